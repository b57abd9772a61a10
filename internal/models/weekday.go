package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidWeekday = errors.New("invalid weekday")

// Weekday is a day of the week in Monday-first order.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek is the number of Weekday values.
const DaysInWeek = 7

var weekdayLabels = [DaysInWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Japanese single-character labels used by older saved documents.
var weekdayKanji = [DaysInWeek]string{"月", "火", "水", "木", "金", "土", "日"}

// Weekdays returns all days in canonical order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the short label, e.g. "Mon".
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayLabels[d]
}

// TimeWeekday converts to the standard library weekday.
func (d Weekday) TimeWeekday() time.Weekday {
	return time.Weekday((int(d) + 1) % DaysInWeek)
}

// FromTimeWeekday converts a standard library weekday.
func FromTimeWeekday(wd time.Weekday) Weekday {
	return Weekday((int(wd) + DaysInWeek - 1) % DaysInWeek)
}

// ParseWeekday accepts short or full English names (any case) and the
// single-character Japanese labels.
func ParseWeekday(s string) (Weekday, error) {
	trimmed := strings.TrimSpace(s)
	for i, k := range weekdayKanji {
		if trimmed == k || trimmed == k+"曜日" {
			return Weekday(i), nil
		}
	}
	lower := strings.ToLower(trimmed)
	for i, label := range weekdayLabels {
		if lower == strings.ToLower(label) {
			return Weekday(i), nil
		}
		full := strings.ToLower(Weekday(i).TimeWeekday().String())
		if lower == full {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}
