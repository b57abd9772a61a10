package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/reminder"
)

var (
	morningBefore = models.Coord{Slot: models.Morning, Occasion: models.BeforeMeal}
	eveningAfter  = models.Coord{Slot: models.Evening, Occasion: models.AfterMeal}
)

// fakePersistence records calls. When gate is non-nil, Save and Remove
// block until it is closed.
type fakePersistence struct {
	mu      sync.Mutex
	remote  map[string]models.WeekSchedule
	cached  *reminder.LoadResult
	saves   int
	loadErr error
	saveErr error
	gate    chan struct{}
	started chan struct{}
	clock   time.Time
}

func newFakePersistence() *fakePersistence {
	return &fakePersistence{
		remote: map[string]models.WeekSchedule{},
		clock:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (p *fakePersistence) wait() {
	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.gate != nil {
		<-p.gate
	}
}

func (p *fakePersistence) Load(_ context.Context, id string) (reminder.LoadResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return reminder.LoadResult{}, p.loadErr
	}
	week, ok := p.remote[id]
	if !ok {
		return reminder.LoadResult{}, reminder.ErrNotFound
	}
	return reminder.LoadResult{ID: id, Week: week, Source: reminder.SourceRemote, UpdatedAt: p.clock}, nil
}

func (p *fakePersistence) Save(_ context.Context, id string, week models.WeekSchedule) (reminder.Ack, error) {
	p.wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.saveErr != nil {
		return reminder.Ack{}, p.saveErr
	}
	p.clock = p.clock.Add(time.Second)
	p.remote[id] = week
	p.cached = &reminder.LoadResult{ID: id, Week: week, Source: reminder.SourceCache, UpdatedAt: p.clock}
	return reminder.Ack{ID: id, UpdatedAt: p.clock}, nil
}

func (p *fakePersistence) Remove(_ context.Context, id string) error {
	p.wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.remote, id)
	p.cached = nil
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

func (p *fakePersistence) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

func readyForm(t *testing.T, p Persistence) *Form {
	t.Helper()
	f := NewForm("u1", p, models.DefaultSettings())
	s := f.Schedule()
	if err := s.SetTime(models.Monday, morningBefore, models.MustTimeOfDay(8, 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleEnabled(models.Monday, morningBefore); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDaySelected(models.Monday, true); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestSaveGate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *Form)
	}{
		{name: "empty form", setup: func(f *Form) {}},
		{
			name: "enabled but no day selected",
			setup: func(f *Form) {
				_ = f.Schedule().SetEnabled(models.Monday, morningBefore, true)
			},
		},
		{
			name: "day selected but nothing enabled",
			setup: func(f *Form) {
				_ = f.Schedule().SetDaySelected(models.Monday, true)
				_ = f.Schedule().SetTime(models.Monday, morningBefore, models.MustTimeOfDay(8, 0))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakePersistence()
			f := NewForm("u1", p, models.DefaultSettings())
			tt.setup(f)

			if f.CanSave() {
				t.Error("CanSave() = true, want false")
			}
			if _, err := f.Save(context.Background()); !errors.Is(err, ErrNoDaysSelected) {
				t.Errorf("Save() error = %v, want %v", err, ErrNoDaysSelected)
			}
			if got := p.saveCount(); got != 0 {
				t.Errorf("remote writes = %d, want 0", got)
			}
		})
	}
}

func TestSaveRecordsSnapshot(t *testing.T) {
	p := newFakePersistence()
	f := readyForm(t, p)

	if _, ok := f.Saved(); ok {
		t.Error("Saved() before any save should report nothing")
	}
	ack, err := f.Save(context.Background())
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	snap, ok := f.Saved()
	if !ok {
		t.Fatal("Saved() after save reported nothing")
	}
	if snap.Week != f.Schedule().Week() || !snap.UpdatedAt.Equal(ack.UpdatedAt) {
		t.Errorf("Saved() = %+v, want current week @ %v", snap, ack.UpdatedAt)
	}
}

func TestSaveFailureKeepsSchedule(t *testing.T) {
	p := newFakePersistence()
	p.saveErr = fmt.Errorf("%w: timeout", reminder.ErrSaveFailed)
	f := readyForm(t, p)
	before := f.Schedule().Week()

	if _, err := f.Save(context.Background()); !errors.Is(err, reminder.ErrSaveFailed) {
		t.Fatalf("Save() error = %v, want %v", err, reminder.ErrSaveFailed)
	}
	if f.Schedule().Week() != before {
		t.Error("failed save changed the schedule")
	}
	if f.Saving() {
		t.Error("Saving() = true after failed save")
	}
	if _, ok := f.Saved(); ok {
		t.Error("failed save recorded a snapshot")
	}
}

func TestSaveInProgress(t *testing.T) {
	p := newFakePersistence()
	p.gate = make(chan struct{})
	p.started = make(chan struct{}, 1)
	f := readyForm(t, p)

	done := make(chan error, 1)
	go func() {
		_, err := f.Save(context.Background())
		done <- err
	}()
	<-p.started

	if !f.Saving() {
		t.Error("Saving() = false while a save is outstanding")
	}
	if _, err := f.Save(context.Background()); !errors.Is(err, ErrSaveInProgress) {
		t.Errorf("second Save() error = %v, want %v", err, ErrSaveInProgress)
	}
	if err := f.Delete(context.Background()); !errors.Is(err, ErrSaveInProgress) {
		t.Errorf("Delete() during save error = %v, want %v", err, ErrSaveInProgress)
	}

	close(p.gate)
	if err := <-done; err != nil {
		t.Fatalf("first Save() failed: %v", err)
	}
	if got := p.saveCount(); got != 1 {
		t.Errorf("remote writes = %d, want 1", got)
	}
}

func TestRefreshDuringSave(t *testing.T) {
	p := newFakePersistence()
	p.gate = make(chan struct{})
	p.started = make(chan struct{}, 1)
	f := readyForm(t, p)

	done := make(chan error, 1)
	go func() {
		_, err := f.Save(context.Background())
		done <- err
	}()
	<-p.started

	if err := f.Refresh(context.Background()); !errors.Is(err, ErrSaveInProgress) {
		t.Errorf("Refresh() during save error = %v, want %v", err, ErrSaveInProgress)
	}

	close(p.gate)
	if err := <-done; err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	saved, ok := f.Saved()
	if !ok {
		t.Fatal("Saved() reports nothing after save")
	}
	if got, want := f.Schedule().Week(), saved.Week; got != want {
		t.Errorf("form = %+v, want the saved week %+v", got, want)
	}
	if !f.Schedule().IsAnyEnabled() {
		t.Error("IsAnyEnabled() = false after refresh during save")
	}
}

func TestCloseDropsLateSave(t *testing.T) {
	p := newFakePersistence()
	p.gate = make(chan struct{})
	p.started = make(chan struct{}, 1)
	f := readyForm(t, p)

	done := make(chan error, 1)
	go func() {
		_, err := f.Save(context.Background())
		done <- err
	}()
	<-p.started
	f.Close()
	close(p.gate)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("Save() finishing after Close() error = %v, want %v", err, ErrClosed)
	}
	if _, ok := f.Saved(); ok {
		t.Error("late save result was applied to a closed form")
	}
	if _, err := f.Save(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Save() after Close() error = %v, want %v", err, ErrClosed)
	}
}

func TestMountPrefersRemote(t *testing.T) {
	p := newFakePersistence()
	stale := readyForm(t, p).Schedule().Week()
	p.cached = &reminder.LoadResult{ID: "u1", Week: stale, Source: reminder.SourceCache}

	fresh := stale
	fresh.Days[models.Tuesday].Selected = true
	p.remote["u1"] = fresh

	f := NewForm("u1", p, models.DefaultSettings())
	if !f.MountCached() {
		t.Fatal("MountCached() = false, want true")
	}
	if f.Schedule().Week() != stale {
		t.Error("MountCached() did not render the cached schedule")
	}

	if err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if f.Schedule().Week() != fresh {
		t.Error("Refresh() did not replace the cached view with the remote schedule")
	}
}

func TestMountIgnoresCacheForOtherID(t *testing.T) {
	p := newFakePersistence()
	p.cached = &reminder.LoadResult{ID: "someone-else", Week: readyForm(t, p).Schedule().Week()}

	f := NewForm("u1", p, models.DefaultSettings())
	if f.MountCached() {
		t.Error("MountCached() used a cache entry for a different id")
	}
}

func TestMountRemoteUnavailableKeepsCache(t *testing.T) {
	p := newFakePersistence()
	cached := readyForm(t, p).Schedule().Week()
	p.cached = &reminder.LoadResult{ID: "u1", Week: cached}
	p.loadErr = reminder.ErrRemoteUnavailable

	f := NewForm("u1", p, models.DefaultSettings())
	err := f.Mount(context.Background())
	if !errors.Is(err, reminder.ErrRemoteUnavailable) {
		t.Fatalf("Mount() error = %v, want %v", err, reminder.ErrRemoteUnavailable)
	}
	if f.Schedule().Week() != cached {
		t.Error("Mount() dropped the cached view on remote failure")
	}
	if !errors.Is(f.Notice(), reminder.ErrRemoteUnavailable) {
		t.Errorf("Notice() = %v, want %v", f.Notice(), reminder.ErrRemoteUnavailable)
	}
}

func TestMountDeletedElsewhere(t *testing.T) {
	p := newFakePersistence()
	p.cached = &reminder.LoadResult{ID: "u1", Week: readyForm(t, p).Schedule().Week()}

	f := NewForm("u1", p, models.DefaultSettings())
	if err := f.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() failed: %v", err)
	}
	if f.Schedule().IsAnyEnabled() {
		t.Error("form should be empty when the remote document is gone")
	}
	if _, ok := f.Saved(); ok {
		t.Error("Saved() should report nothing when the remote document is gone")
	}
}

func TestDelete(t *testing.T) {
	p := newFakePersistence()
	f := readyForm(t, p)
	ctx := context.Background()

	if _, err := f.Save(ctx); err != nil {
		t.Fatal(err)
	}
	if err := f.Delete(ctx); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if f.Schedule().Week() != (models.WeekSchedule{}) {
		t.Error("Delete() should reset the schedule")
	}
	if _, ok := f.Saved(); ok {
		t.Error("Saved() after Delete() should report nothing")
	}
	if _, err := p.Load(ctx, "u1"); !errors.Is(err, reminder.ErrNotFound) {
		t.Errorf("remote still has the document after Delete(), err = %v", err)
	}
}

func TestToggleFillsDefaultTime(t *testing.T) {
	settings := models.DefaultSettings()
	settings.DefaultEvening = "19:30"
	f := NewForm("u1", newFakePersistence(), settings)

	if err := f.Toggle(models.Monday, eveningAfter); err != nil {
		t.Fatalf("Toggle() failed: %v", err)
	}
	got := f.Schedule().Setting(models.Monday, eveningAfter)
	if !got.Enabled || got.Time.String() != "19:30" {
		t.Errorf("Setting() after Toggle() = %+v, want enabled 19:30", got)
	}

	// a staged time is kept
	if err := f.Schedule().SetTime(models.Tuesday, morningBefore, models.MustTimeOfDay(6, 15)); err != nil {
		t.Fatal(err)
	}
	if err := f.Enable(models.Tuesday, morningBefore); err != nil {
		t.Fatalf("Enable() failed: %v", err)
	}
	if got := f.Schedule().Setting(models.Tuesday, morningBefore); got.Time.String() != "06:15" {
		t.Errorf("Enable() replaced staged time, got %s", got.Time)
	}

	// toggling off leaves the time alone
	if err := f.Toggle(models.Monday, eveningAfter); err != nil {
		t.Fatal(err)
	}
	if got := f.Schedule().Setting(models.Monday, eveningAfter); got.Enabled || got.Time.String() != "19:30" {
		t.Errorf("Setting() after second Toggle() = %+v, want disabled 19:30", got)
	}
}
