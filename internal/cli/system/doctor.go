package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/medremind/internal/cache"
	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/keyring"
	"github.com/julianstephens/medremind/internal/reminder"
	"github.com/julianstephens/medremind/internal/session"
	"github.com/julianstephens/medremind/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsStore checks are skipped when the store cannot be loaded.
	needsStore bool
	// warnOnly failures do not fail the command.
	warnOnly bool
	run      func(*cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsStore: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsStore: true, run: checkMigrationsComplete},
	{name: "Settings", needsStore: true, run: checkSettings},
	{name: "Saved document", needsStore: true, run: checkDocument},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Local cache", warnOnly: true, run: checkCache},
	{name: "Editor lock", warnOnly: true, run: checkLock},
	{name: "OS keyring", warnOnly: true, run: checkKeyring},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := true

	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Store reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		storeReachable = false
	} else {
		fmt.Printf("✓ Store reachable: OK (%s)\n", ctx.Store.GetConfigPath())
	}

	for _, c := range checks {
		if c.needsStore && !storeReachable {
			fmt.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	v, ok := ctx.Store.(storage.SchemaValidator)
	if !ok {
		return nil
	}
	current, latest, err := v.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	v, ok := ctx.Store.(storage.SchemaValidator)
	if !ok {
		return nil
	}
	current, latest, err := v.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'medremind migrate')", current, latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if errors.Is(err, storage.ErrSettingsNotFound) {
		return fmt.Errorf("no settings stored (run 'medremind init')")
	}
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.Validate()
}

func checkDocument(ctx *cli.Context) error {
	doc, err := ctx.Store.GetReminder(context.Background(), ctx.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read document for %s: %w", ctx.ID, err)
	}
	if _, err := reminder.DecodeStrict(doc.Data); err != nil {
		return fmt.Errorf("document for %s does not decode cleanly: %w", ctx.ID, err)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := ctx.Backups()
	if mgr == nil {
		return nil
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'medremind backup create'")
	}
	return nil
}

func checkCache(ctx *cli.Context) error {
	snap, err := ctx.Cache.Read()
	if errors.Is(err, cache.ErrEmpty) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ctx.Cache.Path(), err)
	}
	if snap.ID != ctx.ID {
		return fmt.Errorf("cache belongs to %s, current profile is %s; it will be replaced on next load", snap.ID, ctx.ID)
	}
	return nil
}

func checkLock(ctx *cli.Context) error {
	if pid, alive := session.LockStatus(ctx.Paths.Dir); alive {
		return fmt.Errorf("an editor is running (pid %d)", pid)
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkClockTimezone(*cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
