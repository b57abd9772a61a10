package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/medremind/internal/constants"
)

var ErrInvalidTimeValue = errors.New("invalid time value")

// TimeOfDay is a wall-clock time with minute granularity and no timezone.
// The zero value is unset, which is distinct from 00:00.
type TimeOfDay struct {
	hour   uint8
	minute uint8
	set    bool
}

// NewTimeOfDay returns ErrInvalidTimeValue unless 0<=h<=23 and 0<=m<=59.
func NewTimeOfDay(h, m int) (TimeOfDay, error) {
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %d:%d out of range", ErrInvalidTimeValue, h, m)
	}
	return TimeOfDay{hour: uint8(h), minute: uint8(m), set: true}, nil
}

// MustTimeOfDay panics on invalid input. Intended for constants and tests.
func MustTimeOfDay(h, m int) TimeOfDay {
	t, err := NewTimeOfDay(h, m)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay parses "HH:MM". The empty string yields the unset value.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeOfDay{}, nil
	}
	parsed, err := time.Parse(constants.TimeFormat, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q (expected HH:MM)", ErrInvalidTimeValue, s)
	}
	return NewTimeOfDay(parsed.Hour(), parsed.Minute())
}

func (t TimeOfDay) IsSet() bool  { return t.set }
func (t TimeOfDay) Hour() int    { return int(t.hour) }
func (t TimeOfDay) Minute() int  { return int(t.minute) }
func (t TimeOfDay) Minutes() int { return int(t.hour)*60 + int(t.minute) }

// Valid reports whether t is set and in range.
func (t TimeOfDay) Valid() bool {
	return t.set && t.hour <= 23 && t.minute <= 59
}

// String returns "HH:MM", or "" when unset.
func (t TimeOfDay) String() string {
	if !t.set {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// On returns the instant at t on the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, int(t.hour), int(t.minute), 0, 0, date.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeValue, err)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
