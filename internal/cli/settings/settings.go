// Package settings edits the default times offered for unset slots.
package settings

import (
	"fmt"

	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/models"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Morning     *string `help:"Default morning time (HH:MM)."`
	Noon        *string `help:"Default noon time (HH:MM)."`
	Evening     *string `help:"Default evening time (HH:MM)."`
	BeforeSleep *string `help:"Default before-sleep time (HH:MM)."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings := ctx.Settings()

	if c.List {
		fmt.Println("Default Times:")
		fmt.Printf("  Morning:      %s\n", settings.DefaultTime(models.Morning))
		fmt.Printf("  Noon:         %s\n", settings.DefaultTime(models.Noon))
		fmt.Printf("  Evening:      %s\n", settings.DefaultTime(models.Evening))
		fmt.Printf("  Before Sleep: %s\n", settings.DefaultTime(models.BeforeSleep))
		return nil
	}

	updates := []struct {
		value *string
		field *string
	}{
		{c.Morning, &settings.DefaultMorning},
		{c.Noon, &settings.DefaultNoon},
		{c.Evening, &settings.DefaultEvening},
		{c.BeforeSleep, &settings.DefaultBeforeSleep},
	}

	updated := false
	for _, u := range updates {
		if u.value == nil {
			continue
		}
		t, err := models.ParseTimeOfDay(*u.value)
		if err != nil {
			return err
		}
		if !t.IsSet() {
			return fmt.Errorf("%w: default time cannot be empty", models.ErrInvalidTimeValue)
		}
		*u.field = t.String()
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := settings.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}
