package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/storage"
)

func (s *Store) GetReminder(ctx context.Context, id string) (models.ReminderDocument, error) {
	var doc models.ReminderDocument
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT document, updated_at FROM reminders WHERE id = $1", id,
	).Scan(&data, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ReminderDocument{}, storage.ErrNotFound
		}
		return models.ReminderDocument{}, err
	}
	doc.Data = data
	return doc, nil
}

func (s *Store) PutReminder(ctx context.Context, id string, data []byte) (time.Time, error) {
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reminders (id, document, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()
		RETURNING updated_at
	`, id, string(data)).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, err
	}
	return updatedAt, nil
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM reminders WHERE id = $1", id)
	return err
}
