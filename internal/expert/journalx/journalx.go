// Package journalx implements the capability expert for journal entries.
package journalx

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/journal"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/expert/storecall"
	"github.com/Strob0t/Hearth/internal/port/expert"
	"github.com/Strob0t/Hearth/internal/port/journalstore"
)

const (
	LabelAdd   = "journal.add"
	LabelQuery = "journal.query"
)

var (
	reAdd   = regexp.MustCompile(`(?i)^(?:journal\s+that|write\s+in\s+my\s+journal(?:\s+that)?|note\s+in\s+my\s+journal)\s+(.+)$`)
	reQuery = regexp.MustCompile(`(?i)^(?:how\s+was\s+my|show\s+(?:me\s+)?my\s+journal\s+(?:for\s+)?(?:this\s+)?)\s*(day|week|month)\??$`)
)

// Expert handles journal intents against the journal store.
type Expert struct {
	store   journalstore.Store
	backoff time.Duration
	now     func() time.Time // for testing
}

// New creates the journal expert.
func New(store journalstore.Store, backoff time.Duration) *Expert {
	return &Expert{store: store, backoff: backoff, now: time.Now}
}

// Name implements expert.Expert.
func (e *Expert) Name() string { return "journal" }

// Priority implements expert.Expert.
func (e *Expert) Priority() int { return 60 }

// Patterns implements expert.Expert.
func (e *Expert) Patterns() []expert.Pattern {
	return []expert.Pattern{
		{Label: LabelAdd, Re: reAdd, Confidence: 0.9, Extract: extractText},
		{Label: LabelQuery, Re: reQuery, Confidence: 0.8, Extract: extractPeriod},
	}
}

func extractText(_ string, sm []string) assist.Slots {
	return assist.Slots{"text": strings.TrimSpace(sm[1])}
}

func extractPeriod(_ string, sm []string) assist.Slots {
	return assist.Slots{"period": strings.ToLower(sm[1])}
}

// CanHandle implements expert.Expert.
func (e *Expert) CanHandle(m assist.IntentMatch) bool {
	return strings.HasPrefix(m.Label, "journal.")
}

// Execute implements expert.Expert.
func (e *Expert) Execute(ctx context.Context, m assist.IntentMatch, _ *session.Session) assist.ExpertResult {
	if m.Label == LabelQuery {
		return e.query(ctx, m)
	}
	return e.add(ctx, m)
}

func (e *Expert) add(ctx context.Context, m assist.IntentMatch) assist.ExpertResult {
	text := m.Slots.Get("text")
	if text == "" {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "What should I write in your journal?",
			Err:     assist.ErrorValidation,
		}
	}

	entry := &journal.Entry{
		ID:        uuid.NewString(),
		Date:      e.now().Format(time.DateOnly),
		Text:      text,
		CreatedAt: e.now(),
	}

	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		return e.store.CreateEntry(ctx, entry)
	})
	if kind != assist.ErrorNone {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "I couldn't write to your journal.",
			Err:     kind,
		}
	}

	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: "Noted in your journal.",
		Action:  LabelAdd,
		Payload: entry,
	}
}

func (e *Expert) query(ctx context.Context, m assist.IntentMatch) assist.ExpertResult {
	now := e.now()
	days := 1
	switch m.Slots.Get("period") {
	case "week":
		days = 7
	case "month":
		days = 30
	}
	r := journal.Range{
		From: now.AddDate(0, 0, -days).Format(time.DateOnly),
		To:   now.Format(time.DateOnly),
	}

	var entries []journal.Entry
	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		var err error
		entries, err = e.store.QueryEntries(ctx, r)
		return err
	})
	if kind != assist.ErrorNone {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "I couldn't read your journal right now.",
			Err:     kind,
		}
	}

	if len(entries) == 0 {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Success: true,
			Message: "No journal entries for that period.",
			Action:  LabelQuery,
			Payload: entries,
		}
	}

	parts := make([]string, len(entries))
	for i, en := range entries {
		parts[i] = fmt.Sprintf("%s: %s", en.Date, en.Text)
	}
	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: strings.Join(parts, " | "),
		Action:  LabelQuery,
		Payload: entries,
	}
}
