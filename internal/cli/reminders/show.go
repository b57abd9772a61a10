package reminders

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/reminder"
	"github.com/julianstephens/medremind/internal/session"
)

// ShowCmd prints the saved schedule. The local cache is read first unless
// --remote is given.
type ShowCmd struct {
	Remote bool `help:"Fetch from the store instead of the local cache."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	var (
		res reminder.LoadResult
		err error
	)
	if !c.Remote {
		res, err = ctx.Adapter.LoadFromCacheOnly()
		if err == nil && res.ID != ctx.ID {
			err = reminder.ErrNotFound
		}
	}
	if c.Remote || errors.Is(err, reminder.ErrNotFound) {
		res, err = ctx.Adapter.Load(context.Background(), ctx.ID)
	}
	if errors.Is(err, reminder.ErrNotFound) {
		fmt.Println("No saved reminders.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("ID:      %s\n", res.ID)
	if !res.UpdatedAt.IsZero() {
		fmt.Printf("Updated: %s (%s)\n", res.UpdatedAt.Local().Format("2006-01-02 15:04"), res.Source)
	}
	if res.Notice != nil {
		fmt.Printf("Note:    %v\n", res.Notice)
	}
	fmt.Println()
	models.PrintWeek(os.Stdout, res.Week)
	return nil
}

// DeleteCmd removes the saved schedule from the store and the cache.
type DeleteCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete saved reminders for %s?", ctx.ID)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	lock, err := session.AcquireLock(ctx.Paths.Dir)
	if err != nil {
		return err
	}
	defer lock.Release()

	if mgr := ctx.Backups(); mgr != nil {
		mgr.CreateQuietly("delete")
	}

	if err := ctx.Adapter.Remove(context.Background(), ctx.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted reminders for %s\n", ctx.ID)
	return nil
}
