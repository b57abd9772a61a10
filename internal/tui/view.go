package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/medremind/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateWeek:
		content = docStyle.Render(m.grid.View())
	case constants.StateSaved:
		content = docStyle.Render(m.saved.View())
	case constants.StateEditTime, constants.StateConfirmDelete:
		content = lipgloss.JoinVertical(lipgloss.Left,
			docStyle.Render(m.grid.View()),
			m.huhForm.View(),
		)
	}

	parts := []string{m.viewTabs()}
	if m.banner != "" {
		parts = append(parts, m.viewBanner())
	}
	parts = append(parts, content)
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for _, t := range []struct {
		title string
		state constants.SessionState
	}{
		{"Week", constants.StateWeek},
		{"Saved", constants.StateSaved},
	} {
		active := m.state == t.state ||
			(t.state == constants.StateWeek && m.state != constants.StateSaved)
		if active {
			tabs = append(tabs, activeTabStyle.Render(t.title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(t.title))
		}
	}
	tabs = append(tabs, inactiveTabStyle.Render(m.form.ID()))
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewBanner() string {
	if m.form.Notice() != nil && m.banner == m.form.Notice().Error() {
		return noticeStyle.Render("⚠ " + m.banner)
	}
	return dangerStyle.Render("✗ " + m.banner)
}
