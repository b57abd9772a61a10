// Package session ties one editing session of the reminder form to its
// persistence: it mounts the saved schedule, gates and serializes saves,
// and drops results that arrive after the form is closed.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/julianstephens/medremind/internal/logger"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/reminder"
	"github.com/julianstephens/medremind/internal/schedule"
)

var (
	ErrNoDaysSelected = errors.New("select at least one day and enable at least one reminder")
	ErrSaveInProgress = errors.New("a save is already in progress")
	ErrClosed         = errors.New("form is closed")
)

// Persistence is the subset of reminder.Adapter a form needs.
type Persistence interface {
	Load(ctx context.Context, id string) (reminder.LoadResult, error)
	Save(ctx context.Context, id string, week models.WeekSchedule) (reminder.Ack, error)
	Remove(ctx context.Context, id string) error
	LoadFromCacheOnly() (reminder.LoadResult, error)
}

// Form owns the schedule being edited for one identifier.
type Form struct {
	id       string
	store    *schedule.Store
	persist  Persistence
	settings models.Settings

	mu       sync.Mutex
	saving   bool
	closed   bool
	hasSaved bool
	saved    models.Snapshot
	notice   error
}

func NewForm(id string, p Persistence, settings models.Settings) *Form {
	return &Form{
		id:       id,
		store:    schedule.New(),
		persist:  p,
		settings: settings.Merge(models.DefaultSettings()),
	}
}

func (f *Form) ID() string { return f.id }

// Schedule returns the store being edited.
func (f *Form) Schedule() *schedule.Store { return f.store }

func (f *Form) Settings() models.Settings { return f.settings }

// MountCached rehydrates the form from the local cache when it holds a
// document for this identifier. It never blocks on the network.
func (f *Form) MountCached() bool {
	res, err := f.persist.LoadFromCacheOnly()
	if err != nil || res.ID != f.id {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.store.Replace(res.Week)
	f.setSaved(res.Snapshot())
	return true
}

// Refresh loads the remote document and replaces the form contents with
// it. A document deleted elsewhere empties the form. When the remote is
// unreachable the current view is kept and the error is recorded as the
// notice. While a save or delete is in flight Refresh fails with
// ErrSaveInProgress and leaves the form alone.
func (f *Form) Refresh(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return ErrClosed
	case f.saving:
		f.mu.Unlock()
		return ErrSaveInProgress
	}
	f.mu.Unlock()

	res, err := f.persist.Load(ctx, f.id)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	// a save started while loading; its result is newer
	if f.saving {
		return ErrSaveInProgress
	}

	switch {
	case err == nil:
		f.store.Replace(res.Week)
		f.setSaved(res.Snapshot())
		f.notice = res.Notice
		return nil
	case errors.Is(err, reminder.ErrNotFound):
		f.store.Reset()
		f.hasSaved = false
		f.saved = models.Snapshot{}
		f.notice = nil
		return nil
	default:
		f.notice = err
		return err
	}
}

// Mount renders the cached schedule first, then replaces it with the
// remote one.
func (f *Form) Mount(ctx context.Context) error {
	if f.MountCached() {
		logger.Debug("Mounted form from cache", "id", f.id)
	}
	return f.Refresh(ctx)
}

// Toggle flips the enabled flag at (day, coord). Enabling a slot with no
// time fills in the configured default for that slot.
func (f *Form) Toggle(day models.Weekday, coord models.Coord) error {
	if err := f.store.ToggleEnabled(day, coord); err != nil {
		return err
	}
	return f.fillDefault(day, coord)
}

// Enable is Toggle for scripted edits: it only ever turns the slot on.
func (f *Form) Enable(day models.Weekday, coord models.Coord) error {
	if err := f.store.SetEnabled(day, coord, true); err != nil {
		return err
	}
	return f.fillDefault(day, coord)
}

func (f *Form) fillDefault(day models.Weekday, coord models.Coord) error {
	s := f.store.Setting(day, coord)
	if !s.Enabled || s.Time.IsSet() {
		return nil
	}
	return f.store.SetTime(day, coord, f.settings.DefaultTime(coord.Slot))
}

// CanSave reports whether the save gate is open: at least one reminder is
// enabled and at least one day is selected.
func (f *Form) CanSave() bool {
	return canSave(f.store.Week())
}

func canSave(week models.WeekSchedule) bool {
	return week.IsAnyEnabled() && len(week.SelectedDays()) > 0
}

// Save persists the current schedule. Only one save runs at a time; a
// second call while one is outstanding fails with ErrSaveInProgress. A
// failed save leaves the schedule as it was.
func (f *Form) Save(ctx context.Context) (reminder.Ack, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return reminder.Ack{}, ErrClosed
	}
	if f.saving {
		f.mu.Unlock()
		return reminder.Ack{}, ErrSaveInProgress
	}
	week := f.store.Week()
	if !canSave(week) {
		f.mu.Unlock()
		return reminder.Ack{}, ErrNoDaysSelected
	}
	f.saving = true
	f.mu.Unlock()

	ack, err := f.persist.Save(ctx, f.id, week)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.saving = false
	if f.closed {
		logger.Debug("Dropping save result for closed form", "id", f.id)
		return reminder.Ack{}, ErrClosed
	}
	if err != nil {
		return reminder.Ack{}, err
	}
	f.setSaved(models.Snapshot{ID: f.id, Week: week, UpdatedAt: ack.UpdatedAt})
	f.notice = nil
	return ack, nil
}

// Delete removes the saved schedule remotely and locally, then empties
// the form. On failure nothing changes.
func (f *Form) Delete(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.saving {
		f.mu.Unlock()
		return ErrSaveInProgress
	}
	f.saving = true
	f.mu.Unlock()

	err := f.persist.Remove(ctx, f.id)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.saving = false
	if f.closed {
		return ErrClosed
	}
	if err != nil {
		return err
	}
	f.store.Reset()
	f.hasSaved = false
	f.saved = models.Snapshot{}
	f.notice = nil
	return nil
}

// Close marks the form as gone. Results of operations still in flight are
// discarded.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// Saving reports whether a save or delete is in flight.
func (f *Form) Saving() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saving
}

// Saved returns the last persisted snapshot, if any.
func (f *Form) Saved() (models.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved, f.hasSaved
}

// Notice returns the last non-fatal problem, e.g. a remote outage while the
// cached schedule is shown.
func (f *Form) Notice() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notice
}

func (f *Form) setSaved(s models.Snapshot) {
	f.saved = s
	f.hasSaved = true
}
