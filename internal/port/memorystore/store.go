// Package memorystore defines the port interface for remembered facts.
package memorystore

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/person"
)

// Store is the port interface for entity facts.
type Store interface {
	AddFact(ctx context.Context, f *person.Fact) error
	Search(ctx context.Context, query string) ([]person.Fact, error)
}
