// Package cache keeps a single local copy of the last reminder document
// that was saved or loaded, so the form can render before the network
// answers and the saved view works offline.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/logger"
)

// ErrEmpty is returned by Read when nothing usable is cached.
var ErrEmpty = errors.New("cache is empty")

// Snapshot is the cached document. Document holds the encoded reminder
// document exactly as it was sent to or received from the store.
type Snapshot struct {
	ID        string          `json:"id"`
	Document  json.RawMessage `json:"document"`
	UpdatedAt time.Time       `json:"updatedAt"`
	SavedAt   time.Time       `json:"savedAt"`
}

// Cache is a one-slot file cache.
type Cache struct {
	mu   sync.Mutex
	path string
}

// New returns a cache rooted at <configDir>/cache.
func New(configDir string) *Cache {
	return &Cache{path: filepath.Join(configDir, constants.CacheDirName, constants.CacheFileName)}
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// Read returns the cached snapshot. A corrupt file is treated as empty.
func (c *Cache) Read() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, ErrEmpty
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read cache: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil || snap.ID == "" || len(snap.Document) == 0 {
		logger.Warn("Ignoring unreadable cache file", "path", c.path, "err", err)
		return Snapshot{}, ErrEmpty
	}
	return snap, nil
}

// Write replaces the cached snapshot. The file is written to a temporary
// path first and renamed into place.
func (c *Cache) Write(snap Snapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), constants.CacheFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil {
			logger.Warn("Failed to remove temporary cache file", "path", tmpPath, "err", removeErr)
		}
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}

// Clear removes the cached snapshot. Clearing an empty cache is not an error.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
