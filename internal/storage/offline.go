package storage

import (
	"context"
	"time"

	"github.com/julianstephens/medremind/internal/models"
)

// Offline wraps a provider that failed to load. Every call fails with the
// load error so callers fall back to their local cache instead of
// touching an unopened connection.
func Offline(p Provider, err error) Provider {
	return &offline{path: p.GetConfigPath(), err: err}
}

type offline struct {
	path string
	err  error
}

func (o *offline) Init() error  { return o.err }
func (o *offline) Load() error  { return o.err }
func (o *offline) Close() error { return nil }

func (o *offline) GetSettings() (models.Settings, error) { return models.Settings{}, o.err }
func (o *offline) SaveSettings(models.Settings) error    { return o.err }

func (o *offline) GetReminder(context.Context, string) (models.ReminderDocument, error) {
	return models.ReminderDocument{}, o.err
}

func (o *offline) PutReminder(context.Context, string, []byte) (time.Time, error) {
	return time.Time{}, o.err
}

func (o *offline) DeleteReminder(context.Context, string) error { return o.err }

func (o *offline) GetConfigPath() string { return o.path }
