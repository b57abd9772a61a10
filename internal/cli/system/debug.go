package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/storage"
)

type DebugCmd struct {
	DBPath   DebugDBPathCmd   `cmd:"" name:"db-path" help:"Show store location."`
	Dump     DebugDumpCmd     `cmd:"" help:"Dump the stored reminder document as JSON."`
	Settings DebugSettingsCmd `cmd:"" help:"Dump stored settings as JSON."`
	Paths    DebugPathsCmd    `cmd:"" help:"Show local state file locations."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpCmd struct {
	ID string `arg:"" optional:"" help:"Identifier to dump. Defaults to the current profile."`
}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	id := cmd.ID
	if id == "" {
		id = ctx.ID
	}

	doc, err := ctx.Store.GetReminder(context.Background(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no document found for: %s", id)
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	return printJSON(struct {
		ID        string          `json:"id"`
		UpdatedAt string          `json:"updatedAt"`
		Document  json.RawMessage `json:"document"`
	}{
		ID:        id,
		UpdatedAt: doc.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Document:  doc.Data,
	})
}

type DebugSettingsCmd struct{}

func (cmd *DebugSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(settings)
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{
		"configDir": ctx.Paths.Dir,
		"config":    ctx.Paths.Config,
		"env":       ctx.Paths.Env,
		"database":  ctx.Paths.Database,
		"cache":     ctx.Cache.Path(),
		"id":        ctx.ID,
	})
}

func printJSON(v interface{}) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}
