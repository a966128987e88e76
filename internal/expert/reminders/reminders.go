// Package reminders implements the capability expert for reminders.
package reminders

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/reminder"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/expert/storecall"
	"github.com/Strob0t/Hearth/internal/nlp"
	"github.com/Strob0t/Hearth/internal/port/expert"
	"github.com/Strob0t/Hearth/internal/port/reminderstore"
)

const (
	LabelCreate = "reminder.create"
	LabelQuery  = "reminder.query"
)

var (
	reRemind = regexp.MustCompile(`(?i)^(?:please\s+)?remind\s+me\s+(.+)$`)
	reSet    = regexp.MustCompile(`(?i)^set\s+(?:a\s+)?reminder\s+(?:for\s+|to\s+)?(.+)$`)
	reQueryP = regexp.MustCompile(`(?i)^what\s+(?:are\s+my\s+reminders|reminders\s+do\s+i\s+have)(?:\s+.*)?$`)
)

// Expert handles reminder intents against the reminder store.
type Expert struct {
	store   reminderstore.Store
	backoff time.Duration
	now     func() time.Time // for testing
}

// New creates the reminders expert.
func New(store reminderstore.Store, backoff time.Duration) *Expert {
	return &Expert{store: store, backoff: backoff, now: time.Now}
}

// Name implements expert.Expert.
func (e *Expert) Name() string { return "reminders" }

// Priority implements expert.Expert. Reminders are time-critical writes and
// take the top of the priority order.
func (e *Expert) Priority() int { return 90 }

// Patterns implements expert.Expert. Slot extraction happens in Execute
// because due date resolution needs the current time, not classify time.
func (e *Expert) Patterns() []expert.Pattern {
	return []expert.Pattern{
		{Label: LabelCreate, Re: reRemind, Confidence: 0.95, Extract: extractBody},
		{Label: LabelCreate, Re: reSet, Confidence: 0.9, Extract: extractBody},
		{Label: LabelQuery, Re: reQueryP, Confidence: 0.85},
	}
}

func extractBody(_ string, sm []string) assist.Slots {
	return assist.Slots{"body": strings.TrimSpace(sm[1])}
}

// CanHandle implements expert.Expert.
func (e *Expert) CanHandle(m assist.IntentMatch) bool {
	return strings.HasPrefix(m.Label, "reminder.")
}

// Execute implements expert.Expert.
func (e *Expert) Execute(ctx context.Context, m assist.IntentMatch, _ *session.Session) assist.ExpertResult {
	if m.Label == LabelQuery {
		return e.query(ctx)
	}
	return e.create(ctx, m)
}

func (e *Expert) create(ctx context.Context, m assist.IntentMatch) assist.ExpertResult {
	body := m.Slots.Get("body")
	if body == "" {
		body = m.Clause
	}

	now := e.now()
	spec := nlp.ParseTimeSpec(body, now)

	// Dependent intents may carry a forwarded date/time from a prior result.
	if d := m.Slots.Get("date"); d != "" && spec.Date == "" {
		spec.Date = d
	}
	if t := m.Slots.Get("time"); t != "" && spec.Time == "" {
		spec.Time = t
	}

	if spec.Date == "" && spec.Recurrence == "" {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "When should I remind you?",
			Err:     assist.ErrorValidation,
		}
	}

	title := cleanTitle(body)
	if title == "" {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "What should the reminder say?",
			Err:     assist.ErrorValidation,
		}
	}

	rem := &reminder.Reminder{
		ID:         uuid.NewString(),
		Title:      title,
		DueDate:    spec.Date,
		DueTime:    spec.Time,
		Recurrence: reminder.Recurrence(spec.Recurrence),
		CreatedAt:  now,
	}

	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		return e.store.CreateReminder(ctx, rem)
	})
	if kind != assist.ErrorNone {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "I couldn't save that reminder.",
			Err:     kind,
		}
	}

	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: confirmation(rem),
		Action:  LabelCreate,
		Payload: rem,
	}
}

func (e *Expert) query(ctx context.Context) assist.ExpertResult {
	today := e.now().Format(time.DateOnly)

	var due []reminder.Reminder
	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		var err error
		due, err = e.store.QueryDue(ctx, today)
		return err
	})
	if kind != assist.ErrorNone {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "I couldn't check your reminders right now.",
			Err:     kind,
		}
	}

	if len(due) == 0 {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Success: true,
			Message: "You have no reminders due today.",
			Action:  LabelQuery,
			Payload: due,
		}
	}

	parts := make([]string, len(due))
	for i, r := range due {
		if r.DueTime != "" {
			parts[i] = fmt.Sprintf("%s at %s", r.Title, r.DueTime)
		} else {
			parts[i] = r.Title
		}
	}

	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: "Due today: " + strings.Join(parts, "; ") + ".",
		Action:  LabelQuery,
		Payload: due,
	}
}

// cleanTitle strips temporal phrases and the leading "to " from the
// reminder body, leaving the action to be reminded about.
func cleanTitle(body string) string {
	title := nlp.StripTimePhrases(body)
	title = strings.TrimSpace(strings.TrimPrefix(title, "to "))
	title = strings.TrimSuffix(title, ".")
	return strings.TrimSpace(title)
}

func confirmation(r *reminder.Reminder) string {
	switch {
	case r.Recurrence != reminder.RecurrenceNone && r.DueTime != "":
		return fmt.Sprintf("I'll remind you to %s %s at %s.", r.Title, r.Recurrence, r.DueTime)
	case r.Recurrence != reminder.RecurrenceNone:
		return fmt.Sprintf("I'll remind you to %s %s.", r.Title, r.Recurrence)
	case r.DueTime != "":
		return fmt.Sprintf("I'll remind you to %s on %s at %s.", r.Title, r.DueDate, r.DueTime)
	default:
		return fmt.Sprintf("I'll remind you to %s on %s.", r.Title, r.DueDate)
	}
}
