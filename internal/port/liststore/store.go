// Package liststore defines the port interface for the list collaborator.
package liststore

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/list"
)

// Store is the port interface for list CRUD.
type Store interface {
	CreateItem(ctx context.Context, item *list.Item) error
	QueryItems(ctx context.Context, f list.Filter) ([]list.Item, error)
	UpdateItem(ctx context.Context, item *list.Item) error
	DeleteItem(ctx context.Context, id string) error
}
