package postgres

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/person"
)

// AddFact inserts a remembered fact.
func (s *Store) AddFact(ctx context.Context, f *person.Fact) error {
	const q = `
		INSERT INTO facts (id, entity_type, entity_id, fact)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := s.pool.QueryRow(ctx, q,
		f.ID, string(f.EntityType), f.EntityID, f.Fact,
	).Scan(&f.CreatedAt)
	return wrapErr("add fact", err)
}

// Search returns facts whose entity id or text matches the query,
// case-insensitively, oldest first.
func (s *Store) Search(ctx context.Context, query string) ([]person.Fact, error) {
	const q = `
		SELECT id, entity_type, entity_id, fact, created_at
		FROM facts
		WHERE entity_id ILIKE '%' || $1 || '%' OR fact ILIKE '%' || $1 || '%'
		ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, q, query)
	if err != nil {
		return nil, wrapErr("search facts", err)
	}
	defer rows.Close()

	var facts []person.Fact
	for rows.Next() {
		var f person.Fact
		if err := rows.Scan(&f.ID, &f.EntityType, &f.EntityID, &f.Fact, &f.CreatedAt); err != nil {
			return nil, wrapErr("scan fact", err)
		}
		facts = append(facts, f)
	}
	return facts, wrapErr("search facts", rows.Err())
}
