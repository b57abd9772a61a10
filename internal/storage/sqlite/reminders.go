package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/storage"
)

// The database clock stamps every write, formatted as RFC 3339 UTC with milliseconds.
const nowExpr = `strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`

func (s *Store) GetReminder(ctx context.Context, id string) (models.ReminderDocument, error) {
	var (
		data      string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT document, updated_at FROM reminders WHERE id = ?", id,
	).Scan(&data, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ReminderDocument{}, storage.ErrNotFound
		}
		return models.ReminderDocument{}, err
	}

	ts, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.ReminderDocument{}, fmt.Errorf("parsing updated_at for %s: %w", id, err)
	}

	return models.ReminderDocument{Data: []byte(data), UpdatedAt: ts}, nil
}

func (s *Store) PutReminder(ctx context.Context, id string, data []byte) (time.Time, error) {
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reminders (id, document, updated_at) VALUES (?, ?, `+nowExpr+`)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
		RETURNING updated_at
	`, id, string(data)).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, updatedAt)
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM reminders WHERE id = ?", id)
	return err
}
