// Package journalstore defines the port interface for journal entries.
package journalstore

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/journal"
)

// Store is the port interface for the journal.
type Store interface {
	CreateEntry(ctx context.Context, e *journal.Entry) error
	QueryEntries(ctx context.Context, r journal.Range) ([]journal.Entry, error)
}
