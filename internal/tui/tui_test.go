package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/reminder"
	"github.com/julianstephens/medremind/internal/session"
)

const testID = "anon-tui"

type fakePersistence struct {
	mu      sync.Mutex
	remote  map[string]models.WeekSchedule
	cached  *reminder.LoadResult
	notice  error
	saveErr error
	saves   int
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{remote: map[string]models.WeekSchedule{}}
}

func (p *fakePersistence) Load(_ context.Context, id string) (reminder.LoadResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.notice != nil && p.cached != nil {
		res := *p.cached
		res.Notice = p.notice
		return res, nil
	}
	week, ok := p.remote[id]
	if !ok {
		return reminder.LoadResult{}, reminder.ErrNotFound
	}
	return reminder.LoadResult{ID: id, Week: week, Source: reminder.SourceRemote, UpdatedAt: time.Now()}, nil
}

func (p *fakePersistence) Save(_ context.Context, id string, week models.WeekSchedule) (reminder.Ack, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saveErr != nil {
		return reminder.Ack{}, p.saveErr
	}
	p.saves++
	p.remote[id] = week
	return reminder.Ack{ID: id, UpdatedAt: time.Now()}, nil
}

func (p *fakePersistence) Remove(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.remote, id)
	return nil
}

func (p *fakePersistence) LoadFromCacheOnly() (reminder.LoadResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached == nil {
		return reminder.LoadResult{}, reminder.ErrNotFound
	}
	return *p.cached, nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}
	return nm, cmd
}

// loaded returns a model whose initial remote load has completed.
func loaded(t *testing.T, p *fakePersistence) Model {
	t.Helper()
	m := NewModel(session.NewForm(testID, p, models.Settings{}))
	m, _ = send(t, m, m.Init()())
	if m.loading {
		t.Fatal("model still loading after refresh")
	}
	return m
}

func TestEditsWaitForLoad(t *testing.T) {
	m := NewModel(session.NewForm(testID, newFakePersistence(), models.Settings{}))

	m, _ = send(t, m, runes("x"))
	if got := m.form.Schedule().SelectedDays(); len(got) != 0 {
		t.Errorf("SelectedDays() = %v while loading, want none", got)
	}
	if !strings.Contains(m.status, "loading") {
		t.Errorf("status = %q, want loading notice", m.status)
	}
}

func TestToggleAndSave(t *testing.T) {
	p := newFakePersistence()
	m := loaded(t, p)

	// Select Monday on the day picker, then enable morning before meal.
	m, _ = send(t, m, runes("x"))
	m, _ = send(t, m, runes("j"))
	m, _ = send(t, m, runes("x"))

	coord := models.Coord{Slot: models.Morning, Occasion: models.BeforeMeal}
	s := m.form.Schedule().Setting(models.Monday, coord)
	if !s.Enabled || !s.Time.IsSet() {
		t.Fatalf("Setting() = %+v, want enabled with default time", s)
	}

	m, cmd := send(t, m, runes("s"))
	if cmd == nil {
		t.Fatal("save returned no command")
	}
	if !m.saving {
		t.Error("saving = false after save key")
	}

	// A second save while the first is outstanding is refused.
	m, again := send(t, m, runes("s"))
	if again != nil {
		t.Error("second save returned a command")
	}

	m, _ = send(t, m, cmd())
	if m.saving {
		t.Error("saving = true after savedMsg")
	}
	if p.saves != 1 {
		t.Errorf("saves = %d, want 1", p.saves)
	}
	if !strings.HasPrefix(m.status, "Saved at") {
		t.Errorf("status = %q, want saved confirmation", m.status)
	}
	if _, ok := m.form.Saved(); !ok {
		t.Error("Saved() reports nothing after save")
	}
}

func TestReloadWaitsForSave(t *testing.T) {
	p := newFakePersistence()
	m := loaded(t, p)

	m, _ = send(t, m, runes("x"))
	m, _ = send(t, m, runes("j"))
	m, _ = send(t, m, runes("x"))
	m, save := send(t, m, runes("s"))
	if save == nil {
		t.Fatal("save returned no command")
	}

	m, reload := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if reload != nil {
		t.Error("reload during save returned a command")
	}
	if m.loading {
		t.Error("loading = true after reload during save")
	}

	m, _ = send(t, m, save())
	saved, ok := m.form.Saved()
	if !ok {
		t.Fatal("Saved() reports nothing after save")
	}
	if got := m.form.Schedule().Week(); got != saved.Week {
		t.Error("form differs from the saved week")
	}
}

func TestSaveGateClosed(t *testing.T) {
	m := loaded(t, newFakePersistence())

	m, cmd := send(t, m, runes("s"))
	if cmd != nil {
		t.Error("save with nothing selected returned a command")
	}
	if m.banner != session.ErrNoDaysSelected.Error() {
		t.Errorf("banner = %q, want %q", m.banner, session.ErrNoDaysSelected.Error())
	}
}

func TestSaveFailureShowsError(t *testing.T) {
	p := newFakePersistence()
	p.saveErr = reminder.ErrSaveFailed
	m := loaded(t, p)

	m, _ = send(t, m, runes("x"))
	m, _ = send(t, m, runes("j"))
	m, _ = send(t, m, runes("x"))
	m, cmd := send(t, m, runes("s"))
	m, _ = send(t, m, cmd())

	if !strings.Contains(m.banner, reminder.ErrSaveFailed.Error()) {
		t.Errorf("banner = %q, want save failure", m.banner)
	}
	if !m.form.Schedule().IsAnyEnabled() {
		t.Error("failed save cleared the form")
	}
}

func TestCachedViewWithNotice(t *testing.T) {
	week := models.WeekSchedule{}
	week.Days[models.Friday].Selected = true
	p := newFakePersistence()
	p.cached = &reminder.LoadResult{ID: testID, Week: week, Source: reminder.SourceCache}
	p.notice = reminder.ErrRemoteUnavailable

	m := NewModel(session.NewForm(testID, p, models.Settings{}))
	if got := m.form.Schedule().SelectedDays(); len(got) != 1 || got[0] != models.Friday {
		t.Fatalf("SelectedDays() = %v before refresh, want [Fri]", got)
	}

	m, _ = send(t, m, m.Init()())
	if !strings.Contains(m.banner, reminder.ErrRemoteUnavailable.Error()) {
		t.Errorf("banner = %q, want remote unavailable notice", m.banner)
	}
	if !strings.Contains(m.View(), "⚠") {
		t.Error("View() does not render the notice banner")
	}
}

func TestCopyDay(t *testing.T) {
	m := loaded(t, newFakePersistence())

	m, _ = send(t, m, runes("x"))
	m, _ = send(t, m, runes("j"))
	m, _ = send(t, m, runes("x"))
	m, _ = send(t, m, runes("c"))

	coord := models.Coord{Slot: models.Morning, Occasion: models.BeforeMeal}
	for _, d := range models.Weekdays() {
		if !m.form.Schedule().Setting(d, coord).Enabled {
			t.Errorf("%s not enabled after copy", d)
		}
	}
}

func TestReset(t *testing.T) {
	m := loaded(t, newFakePersistence())

	m, _ = send(t, m, runes("x"))
	m, _ = send(t, m, runes("R"))
	if got := m.form.Schedule().SelectedDays(); len(got) != 0 {
		t.Errorf("SelectedDays() = %v after reset, want none", got)
	}
}

func TestDeleteWithoutSaved(t *testing.T) {
	m := loaded(t, newFakePersistence())

	m, _ = send(t, m, runes("D"))
	if m.state != constants.StateWeek {
		t.Errorf("state = %v, want week", m.state)
	}
	if m.banner != "Nothing saved to delete" {
		t.Errorf("banner = %q", m.banner)
	}
}

func TestDeleteOpensConfirm(t *testing.T) {
	week := models.WeekSchedule{}
	week.Days[models.Monday].Selected = true
	p := newFakePersistence()
	p.remote[testID] = week
	m := loaded(t, p)

	m, _ = send(t, m, runes("D"))
	if m.state != constants.StateConfirmDelete {
		t.Fatalf("state = %v, want confirm delete", m.state)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != constants.StateWeek {
		t.Errorf("state = %v after esc, want week", m.state)
	}
	if _, ok := p.remote[testID]; !ok {
		t.Error("document removed without confirmation")
	}
}

func TestDeletedMsg(t *testing.T) {
	week := models.WeekSchedule{}
	week.Days[models.Monday].Selected = true
	p := newFakePersistence()
	p.remote[testID] = week
	m := loaded(t, p)

	if err := m.form.Delete(context.Background()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	m, _ = send(t, m, deletedMsg{})
	if m.status != "Deleted saved reminders" {
		t.Errorf("status = %q", m.status)
	}
	if len(m.form.Schedule().SelectedDays()) != 0 {
		t.Error("form not cleared after delete")
	}
}

func TestClosedResultsIgnored(t *testing.T) {
	m := loaded(t, newFakePersistence())
	m.saving = true
	m.status = "Saving…"

	m, _ = send(t, m, savedMsg{err: session.ErrClosed})
	if m.banner != "" {
		t.Errorf("banner = %q, want none for closed form", m.banner)
	}
}

func TestTabSwitchesView(t *testing.T) {
	m := loaded(t, newFakePersistence())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != constants.StateSaved {
		t.Fatalf("state = %v, want saved", m.state)
	}
	if !strings.Contains(m.View(), "Nothing saved yet") {
		t.Error("saved view missing empty message")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != constants.StateWeek {
		t.Errorf("state = %v, want week", m.state)
	}
}

func TestEditOpensTimeForm(t *testing.T) {
	m := loaded(t, newFakePersistence())

	m, _ = send(t, m, runes("j"))
	m, _ = send(t, m, runes("e"))
	if m.state != constants.StateEditTime {
		t.Fatalf("state = %v, want edit time", m.state)
	}
	if m.timeForm.Value == "" {
		t.Error("time form not prefilled with the default time")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != constants.StateWeek {
		t.Errorf("state = %v after esc, want week", m.state)
	}
}

func TestQuit(t *testing.T) {
	m := loaded(t, newFakePersistence())
	m, cmd := send(t, m, runes("q"))
	if cmd == nil || !m.quitting {
		t.Fatal("quit key did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not return QuitMsg")
	}
}
