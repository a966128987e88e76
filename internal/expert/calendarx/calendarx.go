// Package calendarx implements the capability expert for calendar events.
package calendarx

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/calendar"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/expert/storecall"
	"github.com/Strob0t/Hearth/internal/nlp"
	"github.com/Strob0t/Hearth/internal/port/calendarstore"
	"github.com/Strob0t/Hearth/internal/port/expert"
)

const (
	LabelCreate = "calendar.create"
	LabelQuery  = "calendar.query"
)

var (
	reCreate   = regexp.MustCompile(`(?i)^(?:schedule|create|book|add)\s+(?:an?\s+)?(?:(meeting|appointment|event|call|dinner|lunch)\s+)?(.+)$`)
	reQueryP   = regexp.MustCompile(`(?i)^what(?:'s| is| do i have)?\s+(?:on\s+)?(?:my\s+)?(?:calendar|schedule|agenda)(?:\s+(today|tomorrow|this week))?\??$`)
	reQueryAlt = regexp.MustCompile(`(?i)^what\s+do\s+i\s+have\s+(today|tomorrow|this week)\??$`)
)

// Expert handles calendar intents against the calendar store.
type Expert struct {
	store   calendarstore.Store
	backoff time.Duration
	now     func() time.Time // for testing
}

// New creates the calendar expert.
func New(store calendarstore.Store, backoff time.Duration) *Expert {
	return &Expert{store: store, backoff: backoff, now: time.Now}
}

// Name implements expert.Expert.
func (e *Expert) Name() string { return "calendar" }

// Priority implements expert.Expert.
func (e *Expert) Priority() int { return 85 }

// Patterns implements expert.Expert.
func (e *Expert) Patterns() []expert.Pattern {
	return []expert.Pattern{
		{Label: LabelQuery, Re: reQueryP, Confidence: 0.9, Extract: extractRange},
		{Label: LabelQuery, Re: reQueryAlt, Confidence: 0.7, Extract: extractAltRange},
		{Label: LabelCreate, Re: reCreate, Confidence: 0.8, Extract: extractCreate},
	}
}

func extractCreate(_ string, sm []string) assist.Slots {
	s := assist.Slots{"body": strings.TrimSpace(sm[2])}
	if sm[1] != "" {
		s["kind"] = strings.ToLower(sm[1])
	}
	return s
}

func extractRange(_ string, sm []string) assist.Slots {
	if len(sm) > 1 && sm[1] != "" {
		return assist.Slots{"range": strings.ToLower(sm[1])}
	}
	return assist.Slots{}
}

func extractAltRange(_ string, sm []string) assist.Slots {
	return assist.Slots{"range": strings.ToLower(sm[1])}
}

// CanHandle implements expert.Expert.
func (e *Expert) CanHandle(m assist.IntentMatch) bool {
	return strings.HasPrefix(m.Label, "calendar.")
}

// Execute implements expert.Expert.
func (e *Expert) Execute(ctx context.Context, m assist.IntentMatch, _ *session.Session) assist.ExpertResult {
	if m.Label == LabelQuery {
		return e.query(ctx, m)
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

	if spec.Date == "" {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "When should I schedule that?",
			Err:     assist.ErrorValidation,
		}
	}

	title := strings.TrimSpace(nlp.StripTimePhrases(body))
	title = strings.TrimPrefix(title, "for ")
	title = strings.TrimPrefix(title, "with ")
	if kind := m.Slots.Get("kind"); kind != "" && title != "" {
		title = kind + " " + title
	} else if title == "" {
		title = m.Slots.Get("kind")
	}
	if title == "" {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "What should I call the event?",
			Err:     assist.ErrorValidation,
		}
	}

	ev := &calendar.Event{
		ID:        uuid.NewString(),
		Title:     title,
		Date:      spec.Date,
		Time:      spec.Time,
		Category:  calendar.CategoryGeneral,
		CreatedAt: now,
	}

	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		return e.store.CreateEvent(ctx, ev)
	})
	if kind != assist.ErrorNone {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "I couldn't create that event.",
			Err:     kind,
		}
	}

	msg := fmt.Sprintf("Scheduled %q on %s", ev.Title, ev.Date)
	if ev.Time != "" {
		msg += " at " + ev.Time
	}
	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: msg + ".",
		Action:  LabelCreate,
		Payload: ev,
	}
}

func (e *Expert) query(ctx context.Context, m assist.IntentMatch) assist.ExpertResult {
	r := e.rangeFor(m.Slots.Get("range"))

	var events []calendar.Event
	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		var err error
		events, err = e.store.QueryEvents(ctx, r)
		return err
	})
	if kind != assist.ErrorNone {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "I couldn't read your calendar right now.",
			Err:     kind,
		}
	}

	if len(events) == 0 {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Success: true,
			Message: "Nothing on your calendar for that period.",
			Action:  LabelQuery,
			Payload: events,
		}
	}

	parts := make([]string, len(events))
	for i, ev := range events {
		if ev.Time != "" {
			parts[i] = fmt.Sprintf("%s (%s %s)", ev.Title, ev.Date, ev.Time)
		} else {
			parts[i] = fmt.Sprintf("%s (%s)", ev.Title, ev.Date)
		}
	}

	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: "You have: " + strings.Join(parts, "; ") + ".",
		Action:  LabelQuery,
		Payload: events,
	}
}

// rangeFor resolves a spoken range word into a concrete date range.
func (e *Expert) rangeFor(word string) calendar.Range {
	now := e.now()
	today := now.Format(time.DateOnly)
	switch word {
	case "tomorrow":
		d := now.AddDate(0, 0, 1).Format(time.DateOnly)
		return calendar.Range{From: d, To: d}
	case "this week":
		return calendar.Range{From: today, To: now.AddDate(0, 0, 7).Format(time.DateOnly)}
	default:
		return calendar.Range{From: today, To: today}
	}
}
