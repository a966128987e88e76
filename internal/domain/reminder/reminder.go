// Package reminder provides the domain model for reminders.
package reminder

import "time"

// Recurrence describes how a reminder repeats.
type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Reminder is a single scheduled reminder.
type Reminder struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	DueDate    string     `json:"due_date"`           // YYYY-MM-DD
	DueTime    string     `json:"due_time,omitempty"` // HH:MM
	Recurrence Recurrence `json:"recurrence,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
