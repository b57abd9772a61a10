// Package identity resolves the opaque identifier a reminder document is
// stored under.
package identity

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/logger"
)

var ErrInvalidID = errors.New("invalid identifier")

// New returns a fresh anonymous identifier.
func New() string {
	return constants.AnonIDPrefix + uuid.New().String()
}

// Validate rejects identifiers that cannot be used as a document key.
func Validate(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case len(id) > 128:
		return fmt.Errorf("%w: longer than 128 characters", ErrInvalidID)
	case strings.ContainsAny(id, "/ \t\r\n"):
		return fmt.Errorf("%w: %q contains '/' or whitespace", ErrInvalidID, id)
	}
	return nil
}

// Resolve returns override when set, otherwise the identifier stored in
// <configDir>/session-id, creating one on first use.
func Resolve(configDir, override string) (string, error) {
	if override != "" {
		return override, Validate(override)
	}

	path := filepath.Join(configDir, constants.SessionIDFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id := strings.TrimSpace(string(data))
		if Validate(id) == nil {
			return id, nil
		}
		logger.Warn("Replacing unusable session id file", "path", path)
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("failed to read session id: %w", err)
	}

	id := New()
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to write session id: %w", err)
	}
	logger.Info("Created session id", "id", id)
	return id, nil
}
