// Package journal provides the domain model for journal entries.
package journal

import "time"

// Entry is a single dated journal note.
type Entry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Range selects entries between From and To inclusive (YYYY-MM-DD).
type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}
