// Package reminderstore defines the port interface for the reminder collaborator.
package reminderstore

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/reminder"
)

// Store is the port interface for reminders.
type Store interface {
	CreateReminder(ctx context.Context, r *reminder.Reminder) error
	QueryDue(ctx context.Context, date string) ([]reminder.Reminder, error)
}
