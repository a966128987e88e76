// Package planner implements the day-planning expert: a pure-query
// aggregation over the calendar, reminder and list stores.
package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/calendar"
	"github.com/Strob0t/Hearth/internal/domain/list"
	"github.com/Strob0t/Hearth/internal/domain/reminder"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/expert/storecall"
	"github.com/Strob0t/Hearth/internal/port/calendarstore"
	"github.com/Strob0t/Hearth/internal/port/expert"
	"github.com/Strob0t/Hearth/internal/port/liststore"
	"github.com/Strob0t/Hearth/internal/port/reminderstore"
)

// LabelDay is the single intent this expert owns.
const LabelDay = "plan.day"

var rePlan = regexp.MustCompile(`(?i)^(?:plan\s+my\s+day|what\s+does\s+my\s+day\s+look\s+like|(?:give\s+me\s+)?(?:my\s+)?daily\s+briefing)\??$`)

// Expert composes a day summary from the other stores. Partial store
// failures degrade the summary instead of failing it; the summary reports
// what it could not read.
type Expert struct {
	calendars calendarstore.Store
	reminders reminderstore.Store
	lists     liststore.Store
	backoff   time.Duration
	now       func() time.Time // for testing
}

// New creates the planner expert.
func New(cal calendarstore.Store, rem reminderstore.Store, lst liststore.Store, backoff time.Duration) *Expert {
	return &Expert{calendars: cal, reminders: rem, lists: lst, backoff: backoff, now: time.Now}
}

// Name implements expert.Expert.
func (e *Expert) Name() string { return "planner" }

// Priority implements expert.Expert. Pure query, below all writers.
func (e *Expert) Priority() int { return 50 }

// Patterns implements expert.Expert.
func (e *Expert) Patterns() []expert.Pattern {
	return []expert.Pattern{
		{Label: LabelDay, Re: rePlan, Confidence: 0.9},
	}
}

// CanHandle implements expert.Expert.
func (e *Expert) CanHandle(m assist.IntentMatch) bool {
	return m.Label == LabelDay
}

// Execute implements expert.Expert.
func (e *Expert) Execute(ctx context.Context, _ assist.IntentMatch, _ *session.Session) assist.ExpertResult {
	today := e.now().Format(time.DateOnly)

	var sections []string
	var missing []string

	var events []calendar.Event
	if kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		var err error
		events, err = e.calendars.QueryEvents(ctx, calendar.Range{From: today, To: today})
		return err
	}); kind != assist.ErrorNone {
		missing = append(missing, "calendar")
	} else if len(events) > 0 {
		parts := make([]string, len(events))
		for i, ev := range events {
			if ev.Time != "" {
				parts[i] = ev.Time + " " + ev.Title
			} else {
				parts[i] = ev.Title
			}
		}
		sections = append(sections, "Events: "+strings.Join(parts, ", "))
	}

	var due []reminder.Reminder
	if kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		var err error
		due, err = e.reminders.QueryDue(ctx, today)
		return err
	}); kind != assist.ErrorNone {
		missing = append(missing, "reminders")
	} else if len(due) > 0 {
		parts := make([]string, len(due))
		for i, r := range due {
			parts[i] = r.Title
		}
		sections = append(sections, "Reminders: "+strings.Join(parts, ", "))
	}

	var open []list.Item
	if kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		var err error
		open, err = e.lists.QueryItems(ctx, list.Filter{})
		return err
	}); kind != assist.ErrorNone {
		missing = append(missing, "lists")
	} else if len(open) > 0 {
		sections = append(sections, fmt.Sprintf("%d open list items", len(open)))
	}

	// Only fail outright when nothing at all was readable.
	if len(missing) == 3 {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "I couldn't reach your calendar, reminders or lists to plan your day.",
			Err:     assist.ErrorUnavailable,
		}
	}

	msg := "Nothing scheduled today."
	if len(sections) > 0 {
		msg = "Here's your day. " + strings.Join(sections, ". ") + "."
	}
	if len(missing) > 0 {
		msg += " (I couldn't read: " + strings.Join(missing, ", ") + ".)"
	}

	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: msg,
		Action:  LabelDay,
		Payload: map[string]any{"events": events, "reminders": due, "items": open},
	}
}
