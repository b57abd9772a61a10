package reminders

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/medremind/internal/calendar"
	"github.com/julianstephens/medremind/internal/cli"
)

// NextCmd lists upcoming reminder times.
type NextCmd struct {
	Count int `short:"n" help:"Number of reminders to list." default:"5"`
}

func (c *NextCmd) Run(ctx *cli.Context) error {
	res, err := ctx.LoadWeek(context.Background())
	if err != nil {
		return err
	}

	occurrences, err := calendar.NextOccurrences(res.Week, time.Now(), c.Count)
	if err != nil {
		return err
	}
	if len(occurrences) == 0 {
		fmt.Println("No upcoming reminders.")
		return nil
	}
	for _, o := range occurrences {
		fmt.Printf("%s  %s  %s\n", o.At.Format("Mon 2006-01-02 15:04"), o.Day, o.Coord.Label())
	}
	return nil
}

// ExportCmd groups export formats.
type ExportCmd struct {
	ICS ExportICSCmd `cmd:"" name:"ics" help:"Export as an iCalendar file with weekly recurring events."`
}

type ExportICSCmd struct {
	Out   string `short:"o" help:"Output file. Defaults to stdout." type:"path"`
	Start string `help:"First date to schedule from (YYYY-MM-DD). Defaults to today."`
}

func (c *ExportICSCmd) Run(ctx *cli.Context) error {
	start := time.Now()
	if c.Start != "" {
		parsed, err := time.ParseInLocation("2006-01-02", c.Start, time.Local)
		if err != nil {
			return fmt.Errorf("invalid start date %q (expected YYYY-MM-DD)", c.Start)
		}
		start = parsed
	}

	res, err := ctx.LoadWeek(context.Background())
	if err != nil {
		return err
	}
	cal, err := calendar.ExportICS(res.ID, res.Week, start)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if c.Out != "" {
		f, err := os.OpenFile(c.Out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Out, err)
		}
		defer f.Close()
		w = f
	}

	if err := calendar.WriteICS(w, cal); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	if c.Out != "" {
		fmt.Printf("Wrote %d event(s) to %s\n", len(cal.Events()), c.Out)
	}
	return nil
}
