// Package redis keeps reminder documents in Redis hashes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

const (
	fieldDocument  = "document"
	fieldUpdatedAt = "updated_at"
	opTimeout      = 5 * time.Second
)

type Store struct {
	url      string
	prefix   string
	client   *goredis.Client
	defaults models.Settings
}

// IsConnString reports whether s is a redis:// or rediss:// URL.
func IsConnString(s string) bool {
	return strings.HasPrefix(s, "redis://") || strings.HasPrefix(s, "rediss://")
}

func New(url string) *Store {
	return &Store{
		url:    url,
		prefix: constants.AppName,
	}
}

// WithPrefix namespaces every key, e.g. for tests sharing a server.
func (s *Store) WithPrefix(prefix string) *Store {
	s.prefix = prefix
	return s
}

// WithDefaults sets the settings seeded by Init.
func (s *Store) WithDefaults(defaults models.Settings) *Store {
	s.defaults = defaults
	return s
}

func (s *Store) reminderKey(id string) string {
	return s.prefix + ":" + constants.RemindersCollection + ":" + id
}

func (s *Store) settingsKey() string {
	return s.prefix + ":" + constants.SettingsCollection
}

func (s *Store) connect() error {
	if s.client != nil {
		return nil
	}
	opts, err := goredis.ParseURL(s.url)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
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

func (s *Store) GetSettings() (models.Settings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	kv, err := s.client.HGetAll(ctx, s.settingsKey()).Result()
	if err != nil {
		return models.Settings{}, err
	}
	return storage.SettingsFromKV(kv)
}

func (s *Store) SaveSettings(settings models.Settings) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	kv := storage.SettingsToKV(settings)
	args := make([]interface{}, 0, 2*len(kv))
	for k, v := range kv {
		args = append(args, k, v)
	}
	return s.client.HSet(ctx, s.settingsKey(), args...).Err()
}

func (s *Store) GetReminder(ctx context.Context, id string) (models.ReminderDocument, error) {
	fields, err := s.client.HGetAll(ctx, s.reminderKey(id)).Result()
	if err != nil {
		return models.ReminderDocument{}, err
	}
	data, ok := fields[fieldDocument]
	if !ok {
		return models.ReminderDocument{}, storage.ErrNotFound
	}

	doc := models.ReminderDocument{Data: []byte(data)}
	if raw := fields[fieldUpdatedAt]; raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return models.ReminderDocument{}, fmt.Errorf("parsing %s for %s: %w", fieldUpdatedAt, id, err)
		}
		doc.UpdatedAt = ts
	}
	return doc, nil
}

// PutReminder stamps the document with the server's TIME so all clients
// share one clock.
func (s *Store) PutReminder(ctx context.Context, id string, data []byte) (time.Time, error) {
	now, err := s.client.Time(ctx).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read server time: %w", err)
	}
	now = now.UTC()

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		key := s.reminderKey(id)
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldDocument, string(data), fieldUpdatedAt, now.Format(time.RFC3339Nano))
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return now, nil
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	err := s.client.Del(ctx, s.reminderKey(id)).Err()
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	return err
}

// GetConfigPath returns the server address without credentials.
func (s *Store) GetConfigPath() string {
	u, err := url.Parse(s.url)
	if err != nil {
		return "redis"
	}
	return u.Scheme + "://" + u.Host + u.Path
}
