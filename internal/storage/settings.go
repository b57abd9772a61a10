package storage

import (
	"errors"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/models"
)

// ErrSettingsNotFound is returned when a backend has no settings stored yet.
var ErrSettingsNotFound = errors.New("settings not found")

// SettingsToKV flattens settings into the key/value rows used by the
// relational and redis backends.
func SettingsToKV(s models.Settings) map[string]string {
	return map[string]string{
		constants.SettingDefaultMorning:     s.DefaultMorning,
		constants.SettingDefaultNoon:        s.DefaultNoon,
		constants.SettingDefaultEvening:     s.DefaultEvening,
		constants.SettingDefaultBeforeSleep: s.DefaultBeforeSleep,
	}
}

// SettingsFromKV is the inverse of SettingsToKV. Unknown keys are ignored.
func SettingsFromKV(kv map[string]string) (models.Settings, error) {
	if len(kv) == 0 {
		return models.Settings{}, ErrSettingsNotFound
	}
	return models.Settings{
		DefaultMorning:     kv[constants.SettingDefaultMorning],
		DefaultNoon:        kv[constants.SettingDefaultNoon],
		DefaultEvening:     kv[constants.SettingDefaultEvening],
		DefaultBeforeSleep: kv[constants.SettingDefaultBeforeSleep],
	}, nil
}

// SeedSettings returns the settings Init should write: values already
// stored win, then overrides, then the built-in defaults. Re-running init
// never overwrites an existing configuration.
func SeedSettings(p Provider, overrides models.Settings) models.Settings {
	seeded := overrides.Merge(models.DefaultSettings())
	if existing, err := p.GetSettings(); err == nil {
		return existing.Merge(seeded)
	}
	return seeded
}
