package models

import (
	"github.com/julianstephens/medremind/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	DefaultMorning     string `json:"default_morning" firestore:"default_morning"`           // offered when enabling an unset morning slot, e.g. "08:00"
	DefaultNoon        string `json:"default_noon" firestore:"default_noon"`                 // offered when enabling an unset noon slot
	DefaultEvening     string `json:"default_evening" firestore:"default_evening"`           // offered when enabling an unset evening slot
	DefaultBeforeSleep string `json:"default_before_sleep" firestore:"default_before_sleep"` // offered when enabling before-sleep
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		DefaultMorning:     constants.DefaultMorningTime,
		DefaultNoon:        constants.DefaultNoonTime,
		DefaultEvening:     constants.DefaultEveningTime,
		DefaultBeforeSleep: constants.DefaultBeforeSleepTime,
	}
}

// DefaultTime returns the configured default for a slot, falling back to
// the built-in default when the stored value is missing or malformed.
func (s Settings) DefaultTime(slot Slot) TimeOfDay {
	stored, builtin := s.raw(slot)
	if t, err := ParseTimeOfDay(stored); err == nil && t.IsSet() {
		return t
	}
	t, _ := ParseTimeOfDay(builtin)
	return t
}

func (s Settings) raw(slot Slot) (stored, builtin string) {
	switch slot {
	case Morning:
		return s.DefaultMorning, constants.DefaultMorningTime
	case Noon:
		return s.DefaultNoon, constants.DefaultNoonTime
	case Evening:
		return s.DefaultEvening, constants.DefaultEveningTime
	default:
		return s.DefaultBeforeSleep, constants.DefaultBeforeSleepTime
	}
}

// Validate checks that every non-empty default parses as HH:MM.
func (s Settings) Validate() error {
	for _, v := range []string{s.DefaultMorning, s.DefaultNoon, s.DefaultEvening, s.DefaultBeforeSleep} {
		if _, err := ParseTimeOfDay(v); err != nil {
			return err
		}
	}
	return nil
}

// Merge fills empty fields of s from other.
func (s Settings) Merge(other Settings) Settings {
	if s.DefaultMorning == "" {
		s.DefaultMorning = other.DefaultMorning
	}
	if s.DefaultNoon == "" {
		s.DefaultNoon = other.DefaultNoon
	}
	if s.DefaultEvening == "" {
		s.DefaultEvening = other.DefaultEvening
	}
	if s.DefaultBeforeSleep == "" {
		s.DefaultBeforeSleep = other.DefaultBeforeSleep
	}
	return s
}
