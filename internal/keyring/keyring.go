package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/medremind/internal/constants"
)

// Backend names a storage backend whose connection string can be kept in
// the keyring.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	// ErrUnknownBackend is returned for backends that never use the keyring
	ErrUnknownBackend = errors.New("unknown keyring backend")
)

// Backends lists the backends that may store a connection string.
func Backends() []Backend {
	return []Backend{BackendPostgres, BackendRedis}
}

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	for _, b := range Backends() {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

func (b Backend) user() string {
	return constants.DefaultKeyringUser + ":" + string(b)
}

// GetConnectionString retrieves the connection string for backend.
// Returns ErrNotFound if none is stored.
func GetConnectionString(b Backend) (string, error) {
	connStr, err := keyring.Get(constants.AppName, b.user())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// SetConnectionString stores the connection string for backend.
func SetConnectionString(b Backend, connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, b.user(), connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// DeleteConnectionString removes the connection string for backend.
func DeleteConnectionString(b Backend) error {
	if err := keyring.Delete(constants.AppName, b.user()); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// FirstConnectionString returns the first stored connection string in
// Backends() order, used when no --store flag or config entry is given.
func FirstConnectionString() (string, Backend, error) {
	for _, b := range Backends() {
		connStr, err := GetConnectionString(b)
		if err == nil {
			return connStr, b, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", "", err
		}
	}
	return "", "", ErrNotFound
}

// IsAvailable checks if the OS keyring is available on the current system.
// A missing test entry counts as available.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
