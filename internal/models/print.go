package models

import (
	"fmt"
	"io"
	"strings"
)

// PrintWeek renders a schedule for the terminal: selected days, then each
// active reminder. Days sharing the same reminders are printed once.
func PrintWeek(w io.Writer, week WeekSchedule) {
	days := week.SelectedDays()
	if len(days) == 0 || len(week.Active()) == 0 {
		fmt.Fprintln(w, "No active reminders.")
		return
	}

	labels := make([]string, len(days))
	for i, d := range days {
		labels[i] = d.String()
	}
	fmt.Fprintf(w, "Days: %s\n", strings.Join(labels, ", "))

	if uniform, ok := week.Uniform(); ok {
		printDay(w, "  ", uniform)
		return
	}
	for _, d := range days {
		ds := week.Day(d)
		if !ds.AnyActive() {
			continue
		}
		fmt.Fprintf(w, "%s:\n", d)
		printDay(w, "  ", ds)
	}
}

func printDay(w io.Writer, indent string, ds DaySchedule) {
	for _, c := range AllCoords() {
		if s := ds.Get(c); s.Active() {
			fmt.Fprintf(w, "%s%-24s %s\n", indent, c.Label(), s.Time)
		}
	}
}
