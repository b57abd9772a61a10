package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/session"
	"github.com/julianstephens/medremind/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	lock, err := session.AcquireLock(ctx.Paths.Dir)
	if err != nil {
		return err
	}
	defer lock.Release()

	if mgr := ctx.Backups(); mgr != nil {
		mgr.CreateQuietly("tui")
	}

	form := ctx.NewForm()
	defer form.Close()

	p := tea.NewProgram(tui.NewModel(form), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}
