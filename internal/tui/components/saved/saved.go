// Package saved shows the last persisted schedule in a scrollable view.
package saved

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/medremind/internal/models"
)

var stampStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241")).
	Italic(true)

type Model struct {
	viewport viewport.Model
	snapshot *models.Snapshot
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.snapshot == nil {
		return "Nothing saved yet. Press 's' on the week view to save."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

// SetSnapshot replaces the shown schedule. ok=false clears it.
func (m *Model) SetSnapshot(snap models.Snapshot, ok bool) {
	if !ok {
		m.snapshot = nil
	} else {
		m.snapshot = &snap
	}
	m.render()
}

func (m *Model) render() {
	if m.snapshot == nil {
		m.viewport.SetContent("")
		return
	}
	var b strings.Builder
	if !m.snapshot.UpdatedAt.IsZero() {
		b.WriteString(stampStyle.Render("Last saved " + m.snapshot.UpdatedAt.Local().Format("Mon Jan 2 15:04")))
		b.WriteString("\n\n")
	}
	models.PrintWeek(&b, m.snapshot.Week)
	m.viewport.SetContent(b.String())
}
