// Package firestore stores reminder documents in Cloud Firestore, one
// document per identifier under the reminders collection.
package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

const (
	scheme         = "firestore://"
	fieldUpdatedAt = "updatedAt"
	opTimeout      = 10 * time.Second
)

var ErrInvalidDSN = errors.New("invalid firestore DSN")

// Config is the parsed form of firestore://<project>[?database=..&credentials=..].
type Config struct {
	ProjectID       string
	DatabaseID      string
	CredentialsFile string
}

// IsConnString reports whether s uses the firestore:// scheme.
func IsConnString(s string) bool {
	return strings.HasPrefix(s, scheme)
}

// ParseDSN parses a firestore:// connection string.
func ParseDSN(dsn string) (Config, error) {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme != "firestore" {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidDSN, dsn)
	}
	if u.Host == "" {
		return Config{}, fmt.Errorf("%w: missing project id", ErrInvalidDSN)
	}
	cfg := Config{
		ProjectID:       u.Host,
		DatabaseID:      u.Query().Get("database"),
		CredentialsFile: u.Query().Get("credentials"),
	}
	if cfg.DatabaseID == "" {
		cfg.DatabaseID = firestore.DefaultDatabaseID
	}
	return cfg, nil
}

type Store struct {
	cfg      Config
	dsnErr   error
	client   *firestore.Client
	defaults models.Settings
}

func New(dsn string) *Store {
	cfg, err := ParseDSN(dsn)
	return &Store{cfg: cfg, dsnErr: err}
}

// WithDefaults sets the settings seeded by Init.
func (s *Store) WithDefaults(defaults models.Settings) *Store {
	s.defaults = defaults
	return s
}

func (s *Store) connect() error {
	if s.dsnErr != nil {
		return s.dsnErr
	}
	if s.client != nil {
		return nil
	}

	var opts []option.ClientOption
	if s.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(s.cfg.CredentialsFile))
	}

	// FIRESTORE_EMULATOR_HOST is honoured by the client itself.
	client, err := firestore.NewClientWithDatabase(context.Background(), s.cfg.ProjectID, s.cfg.DatabaseID, opts...)
	if err != nil {
		return fmt.Errorf("failed to create firestore client: %w", err)
	}
	s.client = client
	return nil
}

func (s *Store) Init() error {
	if err := s.connect(); err != nil {
		return err
	}
	if err := s.SaveSettings(storage.SeedSettings(s, s.defaults)); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	return s.connect()
}

func (s *Store) Close() error {
	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

func (s *Store) reminders() *firestore.CollectionRef {
	return s.client.Collection(constants.RemindersCollection)
}

func (s *Store) settingsDoc() *firestore.DocumentRef {
	return s.client.Collection(constants.SettingsCollection).Doc(constants.SettingsDocumentID)
}

func (s *Store) GetSettings() (models.Settings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	snap, err := s.settingsDoc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.Settings{}, storage.ErrSettingsNotFound
		}
		return models.Settings{}, err
	}

	var settings models.Settings
	if err := snap.DataTo(&settings); err != nil {
		return models.Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.settingsDoc().Set(ctx, settings)
	return err
}

// GetReminder reads reminders/{id}. The updatedAt field is lifted out of
// the body into ReminderDocument.UpdatedAt.
func (s *Store) GetReminder(ctx context.Context, id string) (models.ReminderDocument, error) {
	snap, err := s.reminders().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return models.ReminderDocument{}, storage.ErrNotFound
		}
		return models.ReminderDocument{}, err
	}

	fields := snap.Data()
	updatedAt := snap.UpdateTime
	if ts, ok := fields[fieldUpdatedAt].(time.Time); ok {
		updatedAt = ts
	}
	delete(fields, fieldUpdatedAt)

	data, err := json.Marshal(fields)
	if err != nil {
		return models.ReminderDocument{}, fmt.Errorf("encoding document %s: %w", id, err)
	}
	return models.ReminderDocument{Data: data, UpdatedAt: updatedAt}, nil
}

// PutReminder overwrites reminders/{id} and lets the server assign updatedAt.
func (s *Store) PutReminder(ctx context.Context, id string, data []byte) (time.Time, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return time.Time{}, fmt.Errorf("document for %s is not a JSON object: %w", id, err)
	}
	fields[fieldUpdatedAt] = firestore.ServerTimestamp

	wr, err := s.reminders().Doc(id).Set(ctx, fields)
	if err != nil {
		return time.Time{}, err
	}
	return wr.UpdateTime, nil
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	_, err := s.reminders().Doc(id).Delete(ctx)
	return err
}

func (s *Store) GetConfigPath() string {
	return scheme + s.cfg.ProjectID
}
