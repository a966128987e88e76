package postgres

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/calendar"
)

// CreateEvent inserts a new calendar event.
func (s *Store) CreateEvent(ctx context.Context, ev *calendar.Event) error {
	const q = `
		INSERT INTO calendar_events (id, title, event_date, event_time, category)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING created_at`

	err := s.pool.QueryRow(ctx, q,
		ev.ID, ev.Title, ev.Date, ev.Time, string(ev.Category),
	).Scan(&ev.CreatedAt)
	return wrapErr("create event", err)
}

// QueryEvents returns events within the inclusive date range, ordered by
// date then time, all-day events first.
func (s *Store) QueryEvents(ctx context.Context, r calendar.Range) ([]calendar.Event, error) {
	const q = `
		SELECT id, title, event_date::text, COALESCE(event_time::text, ''), category, created_at
		FROM calendar_events
		WHERE event_date BETWEEN $1::date AND $2::date
		ORDER BY event_date ASC, event_time ASC NULLS FIRST`

	rows, err := s.pool.Query(ctx, q, r.From, r.To)
	if err != nil {
		return nil, wrapErr("query events", err)
	}
	defer rows.Close()

	var events []calendar.Event
	for rows.Next() {
		var ev calendar.Event
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Date, &ev.Time, &ev.Category, &ev.CreatedAt); err != nil {
			return nil, wrapErr("scan event", err)
		}
		// event_time comes back as HH:MM:SS; the domain carries HH:MM.
		if len(ev.Time) > 5 {
			ev.Time = ev.Time[:5]
		}
		events = append(events, ev)
	}
	return events, wrapErr("query events", rows.Err())
}
