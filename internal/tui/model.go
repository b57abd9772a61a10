// Package tui is the interactive reminder form: a week grid to edit, a
// view of the last saved schedule, and asynchronous save and delete.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/reminder"
	"github.com/julianstephens/medremind/internal/session"
	"github.com/julianstephens/medremind/internal/tui/components/saved"
	"github.com/julianstephens/medremind/internal/tui/components/week"
)

const storeTimeout = 15 * time.Second

type (
	refreshedMsg struct{ err error }
	savedMsg     struct {
		ack reminder.Ack
		err error
	}
	deletedMsg struct{ err error }
)

type Model struct {
	form          *session.Form
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	grid          week.Model
	saved         saved.Model
	huhForm       *huh.Form
	timeForm      *TimeFormModel
	confirmForm   *ConfirmationFormModel
	loading       bool
	saving        bool
	banner        string // error or notice shown above the grid
	status        string
	quitting      bool
	width         int
	height        int
}

// NewModel renders the cached schedule immediately. Init fetches the
// remote one.
func NewModel(form *session.Form) Model {
	m := Model{
		form:    form,
		state:   constants.StateWeek,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		grid:    week.New(),
		saved:   saved.New(0, 0),
		loading: true,
		status:  "Loading…",
	}
	if form.MountCached() {
		m.status = "Showing cached reminders, checking for updates…"
	}
	m.sync()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) ShortHelp() []key.Binding {
	if m.state == constants.StateSaved {
		return []key.Binding{m.keys.Tab, m.keys.Up, m.keys.Down, m.keys.Quit}
	}
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

// sync copies the form's state into the view components.
func (m *Model) sync() {
	m.grid.SetWeek(m.form.Schedule().Week())
	m.saved.SetSnapshot(m.form.Saved())
}

func (m Model) refresh() tea.Cmd {
	form := m.form
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return refreshedMsg{err: form.Refresh(ctx)}
	}
}

func (m Model) save() tea.Cmd {
	form := m.form
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		ack, err := form.Save(ctx)
		return savedMsg{ack: ack, err: err}
	}
}

func (m Model) delete() tea.Cmd {
	form := m.form
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return deletedMsg{err: form.Delete(ctx)}
	}
}
