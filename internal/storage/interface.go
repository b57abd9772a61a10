package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/medremind/internal/models"
)

var (
	// ErrNotFound is returned when no document exists for an identifier.
	ErrNotFound = errors.New("document not found")
	// ErrNotInitialized is returned by Load before init has been run.
	ErrNotInitialized = errors.New("storage not initialized, run 'medremind init' first")
)

// Provider is a remote document store for reminder documents.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Reminders
	GetReminder(ctx context.Context, id string) (models.ReminderDocument, error)
	// PutReminder replaces the document for id and returns the write time
	// assigned by the backend's clock.
	PutReminder(ctx context.Context, id string, data []byte) (time.Time, error)
	// DeleteReminder removes the document for id. Deleting a missing
	// document is not an error.
	DeleteReminder(ctx context.Context, id string) error

	// Utils
	GetConfigPath() string
}

// SchemaValidator is implemented by backends with a versioned schema.
type SchemaValidator interface {
	ValidateSchema() error
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}
