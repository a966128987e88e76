// Package list provides the domain model for shopping and to-do lists.
package list

import "time"

// Item is a single entry on a named list.
type Item struct {
	ID        string    `json:"id"`
	List      string    `json:"list"` // "shopping", "todo", ...
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity,omitempty"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows a list query. Zero values match everything.
type Filter struct {
	List        string `json:"list,omitempty"`
	IncludeDone bool   `json:"include_done"`
}

// DefaultList is used when the utterance names no specific list.
const DefaultList = "shopping"
