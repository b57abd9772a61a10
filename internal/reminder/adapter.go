// Package reminder persists weekly schedules: it encodes them as reminder
// documents, writes them to a storage backend and mirrors the last good
// copy into the local cache.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/medremind/internal/cache"
	"github.com/julianstephens/medremind/internal/logger"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/storage"
)

var (
	ErrNotFound = errors.New("no saved reminders")
	// ErrRemoteUnavailable is informational: the caller still gets the
	// cached schedule.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrSaveFailed        = errors.New("save failed")
	ErrDeleteFailed      = errors.New("delete failed")
)

// Source tells where a loaded schedule came from.
type Source int

const (
	SourceRemote Source = iota
	SourceCache
)

func (s Source) String() string {
	if s == SourceCache {
		return "cache"
	}
	return "remote"
}

// LoadResult is a loaded schedule. Notice is set when the remote failed and
// the cache was used instead.
type LoadResult struct {
	ID        string
	Week      models.WeekSchedule
	Source    Source
	UpdatedAt time.Time
	Notice    error
}

// Snapshot returns the result as a models.Snapshot.
func (r LoadResult) Snapshot() models.Snapshot {
	return models.Snapshot{ID: r.ID, Week: r.Week, UpdatedAt: r.UpdatedAt}
}

// Ack acknowledges a successful save.
type Ack struct {
	ID        string
	UpdatedAt time.Time
}

// Adapter binds a storage backend and the local cache.
type Adapter struct {
	store storage.Provider
	cache *cache.Cache
	// mu serializes writes.
	mu    sync.Mutex
}

func NewAdapter(store storage.Provider, c *cache.Cache) *Adapter {
	return &Adapter{store: store, cache: c}
}

// Load fetches the document for id. When the backend fails, the cached copy
// for the same id is returned with a Notice wrapping ErrRemoteUnavailable.
// A document that does not exist remotely is ErrNotFound, and a cached copy
// for the same id is dropped.
func (a *Adapter) Load(ctx context.Context, id string) (LoadResult, error) {
	doc, err := a.store.GetReminder(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		a.forget(id)
		return LoadResult{}, fmt.Errorf("%w for %s", ErrNotFound, id)
	}
	if err != nil {
		notice := fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
		logger.Warn("Remote load failed, falling back to cache", "id", id, "err", err)

		res, cerr := a.LoadFromCacheOnly()
		if cerr != nil || res.ID != id {
			return LoadResult{}, notice
		}
		res.Notice = notice
		return res, nil
	}

	week, err := Decode(doc.Data)
	if err != nil {
		return LoadResult{}, fmt.Errorf("decoding document for %s: %w", id, err)
	}

	if err := a.cache.Write(cache.Snapshot{ID: id, Document: doc.Data, UpdatedAt: doc.UpdatedAt}); err != nil {
		logger.Warn("Failed to mirror document to cache", "id", id, "err", err)
	}

	return LoadResult{ID: id, Week: week, Source: SourceRemote, UpdatedAt: doc.UpdatedAt}, nil
}

// Save writes week under id and mirrors it to the cache. On failure the
// cache is left untouched.
func (a *Adapter) Save(ctx context.Context, id string, week models.WeekSchedule) (Ack, error) {
	data, err := Encode(week)
	if err != nil {
		return Ack{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	updatedAt, err := a.store.PutReminder(ctx, id, data)
	if err != nil {
		logger.Error("Save failed", "id", id, "err", err)
		return Ack{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	if err := a.cache.Write(cache.Snapshot{ID: id, Document: data, UpdatedAt: updatedAt}); err != nil {
		logger.Warn("Failed to mirror document to cache", "id", id, "err", err)
	}

	logger.Info("Saved reminders", "id", id, "updatedAt", updatedAt)
	return Ack{ID: id, UpdatedAt: updatedAt}, nil
}

// Remove deletes the document for id, then clears the cache. On failure the
// cache is left untouched.
func (a *Adapter) Remove(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.DeleteReminder(ctx, id); err != nil {
		logger.Error("Delete failed", "id", id, "err", err)
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}

	if err := a.cache.Clear(); err != nil {
		logger.Warn("Failed to clear cache", "err", err)
	}
	logger.Info("Deleted reminders", "id", id)
	return nil
}

// forget clears the cache when it holds id's document.
func (a *Adapter) forget(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap, err := a.cache.Read()
	if err != nil || snap.ID != id {
		return
	}
	if err := a.cache.Clear(); err != nil {
		logger.Warn("Failed to clear cache", "err", err)
		return
	}
	logger.Info("Dropped cached reminders deleted remotely", "id", id)
}

// LoadFromCacheOnly returns the cached schedule without touching the
// backend.
func (a *Adapter) LoadFromCacheOnly() (LoadResult, error) {
	snap, err := a.cache.Read()
	if errors.Is(err, cache.ErrEmpty) {
		return LoadResult{}, ErrNotFound
	}
	if err != nil {
		return LoadResult{}, err
	}

	week, err := Decode(snap.Document)
	if err != nil {
		logger.Warn("Cached document is unreadable", "path", a.cache.Path(), "err", err)
		return LoadResult{}, ErrNotFound
	}
	return LoadResult{ID: snap.ID, Week: week, Source: SourceCache, UpdatedAt: snap.UpdatedAt}, nil
}
