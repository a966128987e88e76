package postgres

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/reminder"
)

// CreateReminder inserts a new reminder.
func (s *Store) CreateReminder(ctx context.Context, r *reminder.Reminder) error {
	const q = `
		INSERT INTO reminders (id, title, due_date, due_time, recurrence)
		VALUES ($1, $2, NULLIF($3, '')::date, NULLIF($4, ''), $5)
		RETURNING created_at`

	err := s.pool.QueryRow(ctx, q,
		r.ID, r.Title, r.DueDate, r.DueTime, string(r.Recurrence),
	).Scan(&r.CreatedAt)
	return wrapErr("create reminder", err)
}

// QueryDue returns reminders due on the given date plus every recurring
// reminder, ordered by due time.
func (s *Store) QueryDue(ctx context.Context, date string) ([]reminder.Reminder, error) {
	const q = `
		SELECT id, title, COALESCE(due_date::text, ''), COALESCE(due_time::text, ''), recurrence, created_at
		FROM reminders
		WHERE due_date = $1::date OR recurrence <> ''
		ORDER BY due_time ASC NULLS FIRST, created_at ASC`

	rows, err := s.pool.Query(ctx, q, date)
	if err != nil {
		return nil, wrapErr("query due reminders", err)
	}
	defer rows.Close()

	var due []reminder.Reminder
	for rows.Next() {
		var r reminder.Reminder
		if err := rows.Scan(&r.ID, &r.Title, &r.DueDate, &r.DueTime, &r.Recurrence, &r.CreatedAt); err != nil {
			return nil, wrapErr("scan reminder", err)
		}
		if len(r.DueTime) > 5 {
			r.DueTime = r.DueTime[:5]
		}
		due = append(due, r)
	}
	return due, wrapErr("query due reminders", rows.Err())
}
