package models

import (
	"time"
)

// SlotSetting is the leaf of the schedule tree.
// A disabled setting keeps its time but is never surfaced as active.
type SlotSetting struct {
	Enabled bool
	Time    TimeOfDay
}

// Active reports whether the setting should produce a reminder.
func (s SlotSetting) Active() bool {
	return s.Enabled && s.Time.IsSet()
}

// DaySchedule holds the seven slot settings of one day plus whether the day
// is ticked in the day picker. It is a value type; assignment copies it.
type DaySchedule struct {
	Selected bool
	Settings [CoordsPerDay]SlotSetting
}

// Get returns the setting at c, or the zero setting for an invalid coordinate.
func (d DaySchedule) Get(c Coord) SlotSetting {
	i, ok := c.index()
	if !ok {
		return SlotSetting{}
	}
	return d.Settings[i]
}

// Set replaces the setting at c.
func (d *DaySchedule) Set(c Coord, s SlotSetting) error {
	i, ok := c.index()
	if !ok {
		return c.Validate()
	}
	d.Settings[i] = s
	return nil
}

// AnyEnabled reports whether at least one setting is enabled.
func (d DaySchedule) AnyEnabled() bool {
	for _, s := range d.Settings {
		if s.Enabled {
			return true
		}
	}
	return false
}

// AnyActive reports whether the day has something to show.
func (d DaySchedule) AnyActive() bool {
	if !d.Selected {
		return false
	}
	for _, s := range d.Settings {
		if s.Active() {
			return true
		}
	}
	return false
}

// SameReminders compares the active reminders of two days, ignoring
// disabled leftovers and the Selected flag.
func (d DaySchedule) SameReminders(other DaySchedule) bool {
	for i := range d.Settings {
		a, b := d.Settings[i], other.Settings[i]
		if a.Active() != b.Active() {
			return false
		}
		if a.Active() && a.Time != b.Time {
			return false
		}
	}
	return true
}

// WeekSchedule holds all seven days. The zero value is the empty week.
type WeekSchedule struct {
	Days [DaysInWeek]DaySchedule
}

// Day returns a copy of the schedule for d.
func (w WeekSchedule) Day(d Weekday) DaySchedule {
	if !d.Valid() {
		return DaySchedule{}
	}
	return w.Days[d]
}

// IsAnyEnabled reports whether any setting of any day is enabled.
func (w WeekSchedule) IsAnyEnabled() bool {
	for _, d := range w.Days {
		if d.AnyEnabled() {
			return true
		}
	}
	return false
}

// SelectedDays returns the ticked days in canonical order.
func (w WeekSchedule) SelectedDays() []Weekday {
	var days []Weekday
	for i, d := range w.Days {
		if d.Selected {
			days = append(days, Weekday(i))
		}
	}
	return days
}

// ActiveReminder is one reminder the schedule would produce.
type ActiveReminder struct {
	Day   Weekday
	Coord Coord
	Time  TimeOfDay
}

// Active lists every reminder on a selected day whose setting is enabled
// with a time, in canonical day then coordinate order.
func (w WeekSchedule) Active() []ActiveReminder {
	var out []ActiveReminder
	for i, d := range w.Days {
		if !d.Selected {
			continue
		}
		for j, s := range d.Settings {
			if s.Active() {
				out = append(out, ActiveReminder{Day: Weekday(i), Coord: allCoords[j], Time: s.Time})
			}
		}
	}
	return out
}

// Uniform reports whether every selected day carries the same reminders,
// returning the first selected day's schedule when it does.
func (w WeekSchedule) Uniform() (DaySchedule, bool) {
	days := w.SelectedDays()
	if len(days) == 0 {
		return DaySchedule{}, false
	}
	first := w.Days[days[0]]
	for _, d := range days[1:] {
		if !first.SameReminders(w.Days[d]) {
			return DaySchedule{}, false
		}
	}
	return first, true
}

// Snapshot is a schedule together with when it was persisted.
type Snapshot struct {
	ID        string
	Week      WeekSchedule
	UpdatedAt time.Time
}
