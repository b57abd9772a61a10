package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/session"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.saved.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case refreshedMsg:
		m.loading = false
		m.sync()
		switch {
		case errors.Is(msg.err, session.ErrClosed):
		case errors.Is(msg.err, session.ErrSaveInProgress):
			m.status = "Reload skipped while saving"
		case msg.err != nil:
			m.banner = fmt.Sprintf("Could not load saved reminders: %v", msg.err)
			m.status = ""
		case m.form.Notice() != nil:
			m.banner = m.form.Notice().Error()
			m.status = "Showing cached reminders"
		default:
			m.banner = ""
			m.status = ""
		}
		return m, nil

	case savedMsg:
		m.saving = false
		if errors.Is(msg.err, session.ErrClosed) {
			return m, nil
		}
		if msg.err != nil {
			m.banner = msg.err.Error()
			m.status = ""
			return m, nil
		}
		m.sync()
		m.banner = ""
		m.status = "Saved at " + msg.ack.UpdatedAt.Local().Format("15:04:05")
		return m, nil

	case deletedMsg:
		m.saving = false
		if errors.Is(msg.err, session.ErrClosed) {
			return m, nil
		}
		if msg.err != nil {
			m.banner = msg.err.Error()
			return m, nil
		}
		m.sync()
		m.banner = ""
		m.status = "Deleted saved reminders"
		return m, nil
	}

	switch m.state {
	case constants.StateEditTime:
		return m.updateTimeForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(keyMsg, m.keys.Tab):
		if m.state == constants.StateSaved {
			m.state = constants.StateWeek
		} else {
			m.state = constants.StateSaved
		}
		return m, nil
	}

	if m.state == constants.StateSaved {
		var cmd tea.Cmd
		m.saved, cmd = m.saved.Update(msg)
		return m, cmd
	}
	return m.updateWeek(keyMsg)
}

func (m Model) updateWeek(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.grid.Move(-1, 0)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.grid.Move(1, 0)
		return m, nil
	case key.Matches(msg, m.keys.Left):
		m.grid.Move(0, -1)
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.grid.Move(0, 1)
		return m, nil
	}

	// The remote schedule replaces the form when it arrives, so edits
	// wait for it.
	if m.loading {
		m.status = "Still loading saved reminders…"
		return m, nil
	}

	day, coord, onSlot := m.grid.Cursor()
	var err error

	switch {
	case key.Matches(msg, m.keys.Toggle):
		if onSlot {
			err = m.form.Toggle(day, coord)
		} else {
			err = m.form.Schedule().ToggleDay(day)
		}
	case key.Matches(msg, m.keys.Edit):
		if !onSlot {
			err = m.form.Schedule().ToggleDay(day)
			break
		}
		current := m.form.Schedule().Setting(day, coord).Time
		if !current.IsSet() {
			current = m.form.Settings().DefaultTime(coord.Slot)
		}
		m.timeForm = &TimeFormModel{Day: day, Coord: coord, Value: current.String()}
		m.huhForm = newTimeForm(m.timeForm)
		m.previousState = m.state
		m.state = constants.StateEditTime
		return m, m.huhForm.Init()
	case key.Matches(msg, m.keys.Copy):
		err = m.form.Schedule().CopyDayToAll(day)
		if err == nil {
			m.status = fmt.Sprintf("Copied %s to every day", day)
		}
	case key.Matches(msg, m.keys.Reset):
		m.form.Schedule().Reset()
		m.status = "Form cleared. Save to keep the change."
	case key.Matches(msg, m.keys.Save):
		return m.startSave()
	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.form.Saved(); !ok {
			m.banner = "Nothing saved to delete"
			return m, nil
		}
		m.confirmForm = &ConfirmationFormModel{}
		m.huhForm = newConfirmForm(fmt.Sprintf("Delete saved reminders for %s?", m.form.ID()), m.confirmForm)
		m.previousState = m.state
		m.state = constants.StateConfirmDelete
		return m, m.huhForm.Init()
	case key.Matches(msg, m.keys.Reload):
		if m.saving {
			m.status = session.ErrSaveInProgress.Error()
			return m, nil
		}
		m.loading = true
		m.status = "Reloading…"
		return m, m.refresh()
	default:
		return m, nil
	}

	if err != nil {
		m.banner = err.Error()
	}
	m.sync()
	return m, nil
}

func (m Model) startSave() (tea.Model, tea.Cmd) {
	if m.saving {
		m.status = session.ErrSaveInProgress.Error()
		return m, nil
	}
	if !m.form.CanSave() {
		m.banner = session.ErrNoDaysSelected.Error()
		return m, nil
	}
	m.saving = true
	m.banner = ""
	m.status = "Saving…"
	return m, m.save()
}

func (m Model) updateTimeForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.huhForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.huhForm = f
	}

	switch m.huhForm.State {
	case huh.StateCompleted:
		fm := m.timeForm
		var err error
		if fm.Value == "" {
			err = m.form.Schedule().ClearTime(fm.Day, fm.Coord)
		} else {
			err = m.form.Schedule().SetTimeString(fm.Day, fm.Coord, fm.Value)
		}
		if err != nil {
			m.banner = err.Error()
		}
		m.sync()
		m.state = m.previousState
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.huhForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.huhForm = f
	}

	switch m.huhForm.State {
	case huh.StateCompleted:
		m.state = m.previousState
		if m.confirmForm.Confirmed {
			if m.saving {
				m.status = session.ErrSaveInProgress.Error()
				return m, cmd
			}
			m.saving = true
			m.status = "Deleting…"
			return m, tea.Batch(cmd, m.delete())
		}
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, cmd
}
