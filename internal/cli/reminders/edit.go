// Package reminders holds the scripted commands that read and edit the
// saved reminder schedule.
package reminders

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/logger"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/session"
)

// edit mounts the saved schedule, applies fn and saves the result while
// holding the editor lock.
func edit(ctx *cli.Context, fn func(f *session.Form) error) error {
	lock, err := session.AcquireLock(ctx.Paths.Dir)
	if err != nil {
		return err
	}
	defer lock.Release()

	form := ctx.NewForm()
	defer form.Close()

	bg := context.Background()
	if err := form.Mount(bg); err != nil {
		return fmt.Errorf("failed to load saved reminders: %w", err)
	}
	if notice := form.Notice(); notice != nil {
		logger.Warn("Editing cached reminders", "err", notice)
	}

	if err := fn(form); err != nil {
		return err
	}

	ack, err := form.Save(bg)
	if err != nil {
		return err
	}

	models.PrintWeek(os.Stdout, form.Schedule().Week())
	fmt.Printf("Saved %s at %s\n", ack.ID, ack.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

// SetCmd sets a reminder time on one or more days.
type SetCmd struct {
	Days   string `arg:"" help:"Days, e.g. mon,wed or all, weekdays, weekends."`
	Slot   string `arg:"" help:"morning, noon, evening, before_sleep, or a key such as noon_before."`
	Time   string `arg:"" help:"Time of day as HH:MM."`
	Before bool   `help:"Before the meal."`
	After  bool   `help:"After the meal (default for meal slots)."`
	Enable bool   `help:"Enable the reminder." default:"true" negatable:""`
	Select bool   `help:"Tick the given days in the day picker." default:"true" negatable:""`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	days, err := cli.ParseDays(c.Days)
	if err != nil {
		return err
	}
	coord, err := cli.ParseCoord(c.Slot, c.Before, c.After)
	if err != nil {
		return err
	}
	t, err := models.ParseTimeOfDay(c.Time)
	if err != nil {
		return err
	}

	return edit(ctx, func(f *session.Form) error {
		s := f.Schedule()
		for _, d := range days {
			if err := s.SetTime(d, coord, t); err != nil {
				return err
			}
			if c.Enable {
				if err := s.SetEnabled(d, coord, true); err != nil {
					return err
				}
			}
			if c.Select {
				if err := s.SetDaySelected(d, true); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// EnableCmd turns reminders on, using the default time for unset slots.
type EnableCmd struct {
	Days   string `arg:"" help:"Days, e.g. mon,wed or all."`
	Slot   string `arg:"" help:"Slot name or key."`
	Before bool   `help:"Before the meal."`
	After  bool   `help:"After the meal (default for meal slots)."`
}

func (c *EnableCmd) Run(ctx *cli.Context) error {
	days, err := cli.ParseDays(c.Days)
	if err != nil {
		return err
	}
	coord, err := cli.ParseCoord(c.Slot, c.Before, c.After)
	if err != nil {
		return err
	}
	return edit(ctx, func(f *session.Form) error {
		for _, d := range days {
			if err := f.Enable(d, coord); err != nil {
				return err
			}
		}
		return nil
	})
}

// DisableCmd turns reminders off. Their times are kept.
type DisableCmd struct {
	Days   string `arg:"" help:"Days, e.g. mon,wed or all."`
	Slot   string `arg:"" help:"Slot name or key."`
	Before bool   `help:"Before the meal."`
	After  bool   `help:"After the meal (default for meal slots)."`
}

func (c *DisableCmd) Run(ctx *cli.Context) error {
	days, err := cli.ParseDays(c.Days)
	if err != nil {
		return err
	}
	coord, err := cli.ParseCoord(c.Slot, c.Before, c.After)
	if err != nil {
		return err
	}
	return edit(ctx, func(f *session.Form) error {
		for _, d := range days {
			if err := f.Schedule().SetEnabled(d, coord, false); err != nil {
				return err
			}
		}
		return nil
	})
}

// DaysCmd replaces the selected days.
type DaysCmd struct {
	Days string `arg:"" help:"Days to select, e.g. mon,wed,fri. All others are unticked."`
}

func (c *DaysCmd) Run(ctx *cli.Context) error {
	days, err := cli.ParseDays(c.Days)
	if err != nil {
		return err
	}
	return edit(ctx, func(f *session.Form) error {
		return f.Schedule().SelectOnly(days)
	})
}

// CopyCmd copies one day's reminders to every other day.
type CopyCmd struct {
	Day string `arg:"" help:"Source day."`
}

func (c *CopyCmd) Run(ctx *cli.Context) error {
	day, err := models.ParseWeekday(c.Day)
	if err != nil {
		return err
	}
	return edit(ctx, func(f *session.Form) error {
		return f.Schedule().CopyDayToAll(day)
	})
}
