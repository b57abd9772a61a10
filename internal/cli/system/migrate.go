package system

import (
	"fmt"

	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/storage"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	validator, ok := ctx.Store.(storage.SchemaValidator)
	if !ok {
		return fmt.Errorf("migrate only supports SQLite and PostgreSQL storage")
	}

	if mgr := ctx.Backups(); mgr != nil {
		mgr.CreateQuietly("migrate")
	}

	count, err := validator.Migrate(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
