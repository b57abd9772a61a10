// Package schedule holds the in-memory weekly reminder schedule that a
// form edits before it is persisted.
package schedule

import (
	"fmt"
	"sync"

	"github.com/julianstephens/medremind/internal/models"
)

// Store owns one WeekSchedule and mutates it in place. It is safe for
// concurrent use; readers always receive copies.
type Store struct {
	mu   sync.RWMutex
	week models.WeekSchedule
}

// New returns a store holding the empty week.
func New() *Store {
	return &Store{}
}

// NewFrom returns a store holding a copy of week.
func NewFrom(week models.WeekSchedule) *Store {
	return &Store{week: week}
}

// Week returns a copy of the current schedule.
func (s *Store) Week() models.WeekSchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.week
}

// Day returns a copy of one day's schedule.
func (s *Store) Day(day models.Weekday) models.DaySchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.week.Day(day)
}

// Setting returns the setting at (day, coord).
func (s *Store) Setting(day models.Weekday, coord models.Coord) models.SlotSetting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.week.Day(day).Get(coord)
}

// SetTime sets the time at (day, coord). The setting's enabled flag is left
// as is, so a time can be staged on a disabled slot.
func (s *Store) SetTime(day models.Weekday, coord models.Coord, t models.TimeOfDay) error {
	if !t.Valid() {
		return fmt.Errorf("%w: time must be set", models.ErrInvalidTimeValue)
	}
	return s.update(day, coord, func(cur models.SlotSetting) models.SlotSetting {
		cur.Time = t
		return cur
	})
}

// SetTimeString parses "HH:MM" and calls SetTime.
func (s *Store) SetTimeString(day models.Weekday, coord models.Coord, value string) error {
	t, err := models.ParseTimeOfDay(value)
	if err != nil {
		return err
	}
	return s.SetTime(day, coord, t)
}

// ClearTime returns the time at (day, coord) to unset.
func (s *Store) ClearTime(day models.Weekday, coord models.Coord) error {
	return s.update(day, coord, func(cur models.SlotSetting) models.SlotSetting {
		cur.Time = models.TimeOfDay{}
		return cur
	})
}

// ToggleEnabled flips the enabled flag at (day, coord). The time is untouched.
func (s *Store) ToggleEnabled(day models.Weekday, coord models.Coord) error {
	return s.update(day, coord, func(cur models.SlotSetting) models.SlotSetting {
		cur.Enabled = !cur.Enabled
		return cur
	})
}

// SetEnabled sets the enabled flag at (day, coord).
func (s *Store) SetEnabled(day models.Weekday, coord models.Coord, enabled bool) error {
	return s.update(day, coord, func(cur models.SlotSetting) models.SlotSetting {
		cur.Enabled = enabled
		return cur
	})
}

// ToggleDay flips whether day is ticked in the day picker.
func (s *Store) ToggleDay(day models.Weekday) error {
	if !day.Valid() {
		return fmt.Errorf("%w: %d", models.ErrInvalidWeekday, int(day))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.week.Days[day].Selected = !s.week.Days[day].Selected
	return nil
}

// SetDaySelected ticks or unticks day.
func (s *Store) SetDaySelected(day models.Weekday, selected bool) error {
	if !day.Valid() {
		return fmt.Errorf("%w: %d", models.ErrInvalidWeekday, int(day))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.week.Days[day].Selected = selected
	return nil
}

// SelectOnly ticks exactly the given days.
func (s *Store) SelectOnly(days []models.Weekday) error {
	for _, d := range days {
		if !d.Valid() {
			return fmt.Errorf("%w: %d", models.ErrInvalidWeekday, int(d))
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.week.Days {
		s.week.Days[i].Selected = false
	}
	for _, d := range days {
		s.week.Days[d].Selected = true
	}
	return nil
}

// CopyDayToAll replaces every other day with a copy of source.
func (s *Store) CopyDayToAll(source models.Weekday) error {
	if !source.Valid() {
		return fmt.Errorf("%w: %d", models.ErrInvalidWeekday, int(source))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.week.Days[source]
	for i := range s.week.Days {
		if models.Weekday(i) != source {
			s.week.Days[i] = src
		}
	}
	return nil
}

// IsAnyEnabled reports whether any slot of any day is enabled.
func (s *Store) IsAnyEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.week.IsAnyEnabled()
}

// SelectedDays returns the ticked days in canonical order.
func (s *Store) SelectedDays() []models.Weekday {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.week.SelectedDays()
}

// Reset returns the store to the empty week.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.week = models.WeekSchedule{}
}

// Replace swaps in a whole schedule, e.g. one loaded from storage.
func (s *Store) Replace(week models.WeekSchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.week = week
}

func (s *Store) update(day models.Weekday, coord models.Coord, fn func(models.SlotSetting) models.SlotSetting) error {
	if !day.Valid() {
		return fmt.Errorf("%w: %d", models.ErrInvalidWeekday, int(day))
	}
	if err := coord.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &s.week.Days[day]
	return d.Set(coord, fn(d.Get(coord)))
}
