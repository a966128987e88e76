// Package calendar provides the domain model for calendar events.
package calendar

import "time"

// Category groups events for display purposes.
type Category string

const (
	CategoryGeneral  Category = "general"
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
)

// Event is a single calendar entry. Time is optional for all-day events.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`           // YYYY-MM-DD
	Time      string    `json:"time,omitempty"` // HH:MM, "" for all-day
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// Range selects events between From and To inclusive (YYYY-MM-DD).
type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}
