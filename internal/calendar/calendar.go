// Package calendar turns a weekly schedule into concrete times: upcoming
// occurrences and an iCalendar export.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/robfig/cron/v3"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/models"
)

var ErrNothingToExport = errors.New("no active reminders to export")

const floatingDateTime = "20060102T150405"

var icalDays = [models.DaysInWeek]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// Group is one coordinate at one time of day, repeated on several days.
type Group struct {
	Coord models.Coord
	Time  models.TimeOfDay
	Days  []models.Weekday
}

// CronSpec renders the group as a standard five-field cron expression.
func (g Group) CronSpec() string {
	dow := make([]string, len(g.Days))
	for i, d := range g.Days {
		dow[i] = fmt.Sprint(int(d.TimeWeekday()))
	}
	return fmt.Sprintf("%d %d * * %s", g.Time.Minute(), g.Time.Hour(), strings.Join(dow, ","))
}

// Groups collapses the active reminders of week by coordinate and time,
// in coordinate order.
func Groups(week models.WeekSchedule) []Group {
	var groups []Group
	index := map[string]int{}
	for _, r := range week.Active() {
		key := r.Coord.Key() + "@" + r.Time.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Coord: r.Coord, Time: r.Time})
		}
		groups[i].Days = append(groups[i].Days, r.Day)
	}

	order := coordOrder()
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Coord != groups[j].Coord {
			return order[groups[i].Coord] < order[groups[j].Coord]
		}
		return groups[i].Time.Minutes() < groups[j].Time.Minutes()
	})
	return groups
}

func coordOrder() map[models.Coord]int {
	order := make(map[models.Coord]int, models.CoordsPerDay)
	for i, c := range models.AllCoords() {
		order[c] = i
	}
	return order
}

// Occurrence is one concrete reminder time.
type Occurrence struct {
	At    time.Time
	Day   models.Weekday
	Coord models.Coord
}

// NextOccurrences returns the next n reminder times strictly after from,
// in from's location.
func NextOccurrences(week models.WeekSchedule, from time.Time, n int) ([]Occurrence, error) {
	if n <= 0 {
		return nil, nil
	}

	var out []Occurrence
	for _, g := range Groups(week) {
		sched, err := cron.ParseStandard(g.CronSpec())
		if err != nil {
			return nil, fmt.Errorf("parse schedule %q: %w", g.CronSpec(), err)
		}
		next := from
		for i := 0; i < n; i++ {
			next = sched.Next(next)
			if next.IsZero() {
				break
			}
			out = append(out, Occurrence{At: next, Day: models.FromTimeWeekday(next.Weekday()), Coord: g.Coord})
		}
	}

	order := coordOrder()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return order[out[i].Coord] < order[out[j].Coord]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// ExportICS builds a calendar with one weekly recurring event per group.
// Times are floating, so they follow the wall clock of whoever imports
// them. Event UIDs are stable for a given id, coordinate and time.
func ExportICS(id string, week models.WeekSchedule, start time.Time) (*ical.Calendar, error) {
	groups := Groups(week)
	if len(groups) == 0 {
		return nil, ErrNothingToExport
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//medremind//"+constants.Version+"//EN")

	stamp := time.Now().UTC()
	for _, g := range groups {
		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%s-%02d%02d@%s", id, g.Coord.Key(), g.Time.Hour(), g.Time.Minute(), constants.AppName))
		vevent.Props.SetText(ical.PropSummary, "Medication: "+g.Coord.Label())
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp)

		dtstart := ical.NewProp(ical.PropDateTimeStart)
		dtstart.Value = firstOn(g, start).Format(floatingDateTime)
		vevent.Props.Set(dtstart)

		// Set directly: SetText would escape the ';' and ',' separators.
		rrule := ical.NewProp(ical.PropRecurrenceRule)
		rrule.Value = "FREQ=WEEKLY;BYDAY=" + byDay(g.Days)
		vevent.Props.Set(rrule)

		cal.Children = append(cal.Children, vevent.Component)
	}
	return cal, nil
}

// WriteICS encodes cal to w.
func WriteICS(w io.Writer, cal *ical.Calendar) error {
	return ical.NewEncoder(w).Encode(cal)
}

func byDay(days []models.Weekday) string {
	codes := make([]string, len(days))
	for i, d := range days {
		codes[i] = icalDays[d]
	}
	return strings.Join(codes, ",")
}

// firstOn returns the first date on or after start that falls on one of
// the group's days, at the group's time.
func firstOn(g Group, start time.Time) time.Time {
	date := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	for i := 0; i < models.DaysInWeek; i++ {
		day := models.FromTimeWeekday(date.Weekday())
		for _, d := range g.Days {
			if d == day {
				return g.Time.On(date)
			}
		}
		date = date.AddDate(0, 0, 1)
	}
	return g.Time.On(start)
}
