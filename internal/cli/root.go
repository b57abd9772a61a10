package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/medremind/internal/backup"
	"github.com/julianstephens/medremind/internal/cache"
	"github.com/julianstephens/medremind/internal/config"
	apperrors "github.com/julianstephens/medremind/internal/errors"
	"github.com/julianstephens/medremind/internal/logger"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/reminder"
	"github.com/julianstephens/medremind/internal/session"
	"github.com/julianstephens/medremind/internal/storage"
	"github.com/julianstephens/medremind/internal/storage/firestore"
	"github.com/julianstephens/medremind/internal/storage/postgres"
	"github.com/julianstephens/medremind/internal/storage/redis"
	"github.com/julianstephens/medremind/internal/storage/sqlite"
)

type Context struct {
	Store   storage.Provider
	Paths   config.Paths
	Config  config.File
	ID      string
	Cache   *cache.Cache
	Adapter *reminder.Adapter
}

// NewContext wires the cache and persistence adapter around store.
func NewContext(store storage.Provider, paths config.Paths, cfg config.File, id string) *Context {
	c := cache.New(paths.Dir)
	return &Context{
		Store:   store,
		Paths:   paths,
		Config:  cfg,
		ID:      id,
		Cache:   c,
		Adapter: reminder.NewAdapter(store, c),
	}
}

// OpenStore picks a backend from the DSN scheme. An empty DSN means the
// SQLite database in the config directory.
func OpenStore(dsn string, paths config.Paths, defaults models.Settings) (storage.Provider, error) {
	return openStore(dsn, paths, defaults, true)
}

// OpenKeyringStore is OpenStore for connection strings read from the OS
// keyring, which may embed credentials.
func OpenKeyringStore(dsn string, paths config.Paths, defaults models.Settings) (storage.Provider, error) {
	return openStore(dsn, paths, defaults, false)
}

func openStore(dsn string, paths config.Paths, defaults models.Settings, rejectCredentials bool) (storage.Provider, error) {
	switch {
	case postgres.IsConnString(dsn):
		if !rejectCredentials {
			return postgres.New(dsn).WithDefaults(defaults), nil
		}
		if err := postgres.ValidateConnString(dsn); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, apperrors.WithHint(err,
					"store the full connection string with 'medremind keyring set postgres <dsn>', or use MEDREMIND_STORE, or .pgpass")
			}
			return nil, err
		}
		return postgres.New(dsn).WithDefaults(defaults), nil
	case redis.IsConnString(dsn):
		return redis.New(dsn).WithDefaults(defaults), nil
	case firestore.IsConnString(dsn):
		return firestore.New(dsn).WithDefaults(defaults), nil
	case dsn == "":
		return sqlite.NewStore(paths.Database).WithDefaults(defaults), nil
	default:
		path, err := config.ExpandPath(dsn)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path).WithDefaults(defaults), nil
	}
}

// Settings returns the stored default times, completed from config.yaml
// and the built-in defaults.
func (c *Context) Settings() models.Settings {
	stored, err := c.Store.GetSettings()
	if err != nil && !errors.Is(err, storage.ErrSettingsNotFound) {
		logger.Warn("Failed to read settings, using defaults", "err", err)
	}
	return stored.Merge(c.Config.Defaults.Settings()).Merge(models.DefaultSettings())
}

// NewForm returns an unmounted form for the current identifier.
func (c *Context) NewForm() *session.Form {
	return session.NewForm(c.ID, c.Adapter, c.Settings())
}

// Backups returns the backup manager for SQLite stores, nil otherwise.
func (c *Context) Backups() *backup.Manager {
	s, ok := c.Store.(*sqlite.Store)
	if !ok {
		return nil
	}
	return backup.NewManager(s.GetConfigPath())
}

// LoadWeek fetches the saved schedule, falling back to the cache. The
// fallback notice is logged and returned in the result.
func (c *Context) LoadWeek(ctx context.Context) (reminder.LoadResult, error) {
	res, err := c.Adapter.Load(ctx, c.ID)
	if err != nil {
		if errors.Is(err, reminder.ErrNotFound) {
			return res, apperrors.WithHint(err, "save a schedule first with 'medremind' or 'medremind set'")
		}
		return res, err
	}
	if res.Notice != nil {
		logger.Warn("Showing cached reminders", "err", res.Notice)
	}
	return res, nil
}

// ParseDays parses a comma-separated list of weekdays. The shortcuts
// "all", "weekdays" and "weekends" are accepted.
func ParseDays(s string) ([]models.Weekday, error) {
	var days []models.Weekday
	seen := map[models.Weekday]bool{}
	add := func(d models.Weekday) {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		switch part {
		case "":
			continue
		case "all", "daily", "everyday":
			for _, d := range models.Weekdays() {
				add(d)
			}
		case "weekdays":
			for _, d := range models.Weekdays()[:5] {
				add(d)
			}
		case "weekends":
			add(models.Saturday)
			add(models.Sunday)
		default:
			d, err := models.ParseWeekday(part)
			if err != nil {
				return nil, err
			}
			add(d)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no days given", models.ErrInvalidWeekday)
	}
	return days, nil
}

// ParseCoord resolves a slot argument. Either a coordinate key such as
// "noon_before" or a slot name is accepted; meal slots default to the
// after-meal occasion unless before is set.
func ParseCoord(slot string, before, after bool) (models.Coord, error) {
	if before && after {
		return models.Coord{}, fmt.Errorf("%w: --before and --after are mutually exclusive", models.ErrInvalidCoord)
	}
	if c, err := models.ParseCoordKey(strings.ToLower(slot)); err == nil {
		return c, nil
	}

	s, err := models.ParseSlot(strings.ToLower(slot))
	if err != nil {
		return models.Coord{}, err
	}
	if !s.IsMeal() {
		if before || after {
			return models.Coord{}, fmt.Errorf("%w: %s has no meal occasion", models.ErrInvalidCoord, s.Label())
		}
		return models.Coord{Slot: s}, nil
	}
	if before {
		return models.Coord{Slot: s, Occasion: models.BeforeMeal}, nil
	}
	return models.Coord{Slot: s, Occasion: models.AfterMeal}, nil
}
