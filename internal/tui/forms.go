package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/medremind/internal/models"
)

// TimeFormModel backs the time entry form.
type TimeFormModel struct {
	Day   models.Weekday
	Coord models.Coord
	Value string
}

// ConfirmationFormModel backs yes/no prompts.
type ConfirmationFormModel struct {
	Confirmed bool
}

func newTimeForm(fm *TimeFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fm.Day.String() + " · " + fm.Coord.Label()).
				Description("HH:MM, empty to clear").
				Placeholder("08:00").
				CharLimit(5).
				Value(&fm.Value).
				Validate(func(s string) error {
					_, err := models.ParseTimeOfDay(s)
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

func newConfirmForm(title string, fm *ConfirmationFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&fm.Confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}
