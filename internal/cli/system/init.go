// Package system holds setup, diagnostics and long-running commands.
package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/storage"
	"github.com/julianstephens/medremind/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing SQLite database before initialization."`
	Source string `help:"Store to copy settings and this profile's reminders from (path or connection string)."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized medremind storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Println("Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return fmt.Errorf("--force only applies to SQLite storage")
	}
	dbPath := s.GetConfigPath()

	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if mgr := ctx.Backups(); mgr != nil {
		mgr.CreateQuietly("init --force")
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
	}
	fmt.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context) error {
	source, err := cli.OpenStore(c.Source, ctx.Paths, models.Settings{})
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer source.Close()

	fmt.Println("  Copying settings...")
	settings, err := source.GetSettings()
	switch {
	case err == nil:
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings to destination: %w", err)
		}
	case errors.Is(err, storage.ErrSettingsNotFound):
		fmt.Println("    No settings in source")
	default:
		return fmt.Errorf("failed to get settings from source: %w", err)
	}

	fmt.Printf("  Copying reminders for %s...\n", ctx.ID)
	bg := context.Background()
	doc, err := source.GetReminder(bg, ctx.ID)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Println("    No reminders in source")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get reminders from source: %w", err)
	}
	if _, err := ctx.Store.PutReminder(bg, ctx.ID, doc.Data); err != nil {
		return fmt.Errorf("failed to save reminders to destination: %w", err)
	}
	// The cache may hold a different profile's view of the old store.
	if err := ctx.Cache.Clear(); err != nil {
		return err
	}
	fmt.Println("    Copied 1 document")
	return nil
}
