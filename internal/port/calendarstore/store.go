// Package calendarstore defines the port interface for the calendar collaborator.
package calendarstore

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/calendar"
)

// Store is the port interface for calendar events.
type Store interface {
	CreateEvent(ctx context.Context, ev *calendar.Event) error
	QueryEvents(ctx context.Context, r calendar.Range) ([]calendar.Event, error)
}
