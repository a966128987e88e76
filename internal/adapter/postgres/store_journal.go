package postgres

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/journal"
)

// CreateEntry inserts a new journal entry.
func (s *Store) CreateEntry(ctx context.Context, e *journal.Entry) error {
	const q = `
		INSERT INTO journal_entries (id, entry_date, text)
		VALUES ($1, $2::date, $3)
		RETURNING created_at`

	err := s.pool.QueryRow(ctx, q, e.ID, e.Date, e.Text).Scan(&e.CreatedAt)
	return wrapErr("create journal entry", err)
}

// QueryEntries returns entries within the inclusive date range, oldest first.
func (s *Store) QueryEntries(ctx context.Context, r journal.Range) ([]journal.Entry, error) {
	const q = `
		SELECT id, entry_date::text, text, created_at
		FROM journal_entries
		WHERE entry_date BETWEEN $1::date AND $2::date
		ORDER BY entry_date ASC, created_at ASC`

	rows, err := s.pool.Query(ctx, q, r.From, r.To)
	if err != nil {
		return nil, wrapErr("query journal entries", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var e journal.Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.Text, &e.CreatedAt); err != nil {
			return nil, wrapErr("scan journal entry", err)
		}
		entries = append(entries, e)
	}
	return entries, wrapErr("query journal entries", rows.Err())
}
