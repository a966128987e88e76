package postgres

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/list"
)

// CreateItem inserts a new list item.
func (s *Store) CreateItem(ctx context.Context, item *list.Item) error {
	const q = `
		INSERT INTO list_items (id, list_name, name, quantity, done)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := s.pool.QueryRow(ctx, q,
		item.ID, item.List, item.Name, item.Quantity, item.Done,
	).Scan(&item.CreatedAt)
	return wrapErr("create list item", err)
}

// QueryItems returns items matching the filter, oldest first. Done items
// are excluded unless the filter asks for them.
func (s *Store) QueryItems(ctx context.Context, f list.Filter) ([]list.Item, error) {
	const q = `
		SELECT id, list_name, name, quantity, done, created_at
		FROM list_items
		WHERE ($1 = '' OR list_name = $1)
		  AND (done = false OR $2)
		ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, q, f.List, f.IncludeDone)
	if err != nil {
		return nil, wrapErr("query list items", err)
	}
	defer rows.Close()

	var items []list.Item
	for rows.Next() {
		var it list.Item
		if err := rows.Scan(&it.ID, &it.List, &it.Name, &it.Quantity, &it.Done, &it.CreatedAt); err != nil {
			return nil, wrapErr("scan list item", err)
		}
		items = append(items, it)
	}
	return items, wrapErr("query list items", rows.Err())
}

// UpdateItem updates a list item's name, quantity and done flag.
func (s *Store) UpdateItem(ctx context.Context, item *list.Item) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE list_items SET name = $2, quantity = $3, done = $4 WHERE id = $1`,
		item.ID, item.Name, item.Quantity, item.Done)
	return execExpectOne(tag, err, "update list item")
}

// DeleteItem removes a list item by id.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM list_items WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete list item")
}
