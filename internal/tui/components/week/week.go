// Package week renders the editable grid of days by reminder slots.
package week

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/medremind/internal/models"
)

// HeaderRow is the cursor row of the day picker above the slot rows.
const HeaderRow = -1

const (
	labelWidth = 24
	cellWidth  = 8
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Width(labelWidth)

	cellStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Align(lipgloss.Center)

	enabledStyle = cellStyle.
			Foreground(lipgloss.Color("42")).
			Bold(true)

	disabledStyle = cellStyle.
			Foreground(lipgloss.Color("240"))

	unselectedDayStyle = cellStyle.
				Foreground(lipgloss.Color("240"))

	selectedDayStyle = cellStyle.
				Foreground(lipgloss.Color("205")).
				Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Underline(true)
)

type Model struct {
	week models.WeekSchedule
	day  models.Weekday
	row  int
}

func New() Model {
	return Model{row: HeaderRow}
}

func (m *Model) SetWeek(week models.WeekSchedule) {
	m.week = week
}

// Move shifts the cursor, clamping to the grid.
func (m *Model) Move(dRow, dDay int) {
	m.row = clamp(m.row+dRow, HeaderRow, models.CoordsPerDay-1)
	m.day = models.Weekday(clamp(int(m.day)+dDay, 0, models.DaysInWeek-1))
}

// Cursor returns the day under the cursor and, unless the cursor is on
// the day picker, the coordinate.
func (m Model) Cursor() (models.Weekday, models.Coord, bool) {
	if m.row == HeaderRow {
		return m.day, models.Coord{}, false
	}
	return m.day, models.AllCoords()[m.row], true
}

func (m Model) View() string {
	var b strings.Builder

	header := []string{labelStyle.Render("Days")}
	for _, d := range models.Weekdays() {
		style := unselectedDayStyle
		mark := "[ ]"
		if m.week.Day(d).Selected {
			style = selectedDayStyle
			mark = "[x]"
		}
		cell := style.Render(mark + " " + d.String())
		if m.row == HeaderRow && d == m.day {
			cell = cursorStyle.Render(cell)
		}
		header = append(header, cell)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	for i, c := range models.AllCoords() {
		row := []string{labelStyle.Render(c.Label())}
		for _, d := range models.Weekdays() {
			cell := renderCell(m.week.Day(d).Get(c))
			if m.row == i && d == m.day {
				cell = cursorStyle.Render(cell)
			}
			row = append(row, cell)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCell(s models.SlotSetting) string {
	switch {
	case s.Active():
		return enabledStyle.Render(s.Time.String())
	case s.Time.IsSet():
		return disabledStyle.Render("(" + s.Time.String() + ")")
	default:
		return disabledStyle.Render("--:--")
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
