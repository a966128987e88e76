// Package person provides the domain model for remembered people and facts.
package person

import "time"

// EntityType distinguishes what a stored fact is about.
type EntityType string

const (
	EntityPerson EntityType = "person"
	EntityPlace  EntityType = "place"
	EntityThing  EntityType = "thing"
)

// Fact is a single remembered statement about an entity.
type Fact struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"` // normalized name, e.g. "sarah"
	Fact       string     `json:"fact"`
	CreatedAt  time.Time  `json:"created_at"`
}
