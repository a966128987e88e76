// Package people implements the capability expert for remembered people and
// facts. Statements like "remember a person named Sarah who is my sister"
// are benign personal data a conservative model may refuse, so this expert
// sits well above the model fallback in classifier priority and its
// patterns are generous: the deterministic path must win.
package people

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/person"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/expert/storecall"
	"github.com/Strob0t/Hearth/internal/port/expert"
	"github.com/Strob0t/Hearth/internal/port/memorystore"
)

const (
	LabelRemember = "person.remember"
	LabelQuery    = "person.query"
)

var (
	rePerson = regexp.MustCompile(`(?i)^remember\s+(?:a\s+person\s+named\s+|that\s+)?([A-Z][a-zA-Z]*)\s+(?:who\s+is\s+|is\s+)?(.+)$`)
	reFact   = regexp.MustCompile(`(?i)^remember\s+that\s+(.+)$`)
	reWho    = regexp.MustCompile(`(?i)^(?:who\s+is|what\s+do\s+you\s+know\s+about|tell\s+me\s+about)\s+(.+?)\??$`)
)

// Expert handles person/memory intents against the memory store.
type Expert struct {
	store   memorystore.Store
	backoff time.Duration
}

// New creates the people expert.
func New(store memorystore.Store, backoff time.Duration) *Expert {
	return &Expert{store: store, backoff: backoff}
}

// Name implements expert.Expert.
func (e *Expert) Name() string { return "people" }

// Priority implements expert.Expert. Writes, so above the pure-query
// experts; the label itself never reaches the model router.
func (e *Expert) Priority() int { return 70 }

// Patterns implements expert.Expert.
func (e *Expert) Patterns() []expert.Pattern {
	return []expert.Pattern{
		{Label: LabelRemember, Re: rePerson, Confidence: 0.95, Extract: extractPerson},
		{Label: LabelRemember, Re: reFact, Confidence: 0.85, Extract: extractFact},
		{Label: LabelQuery, Re: reWho, Confidence: 0.85, Extract: extractWho},
	}
}

func extractPerson(_ string, sm []string) assist.Slots {
	return assist.Slots{
		"name": strings.TrimSpace(sm[1]),
		"fact": strings.TrimSpace(sm[2]),
	}
}

func extractFact(_ string, sm []string) assist.Slots {
	return assist.Slots{"fact": strings.TrimSpace(sm[1])}
}

func extractWho(_ string, sm []string) assist.Slots {
	return assist.Slots{"query": strings.TrimSpace(sm[1])}
}

// CanHandle implements expert.Expert.
func (e *Expert) CanHandle(m assist.IntentMatch) bool {
	return strings.HasPrefix(m.Label, "person.")
}

// Execute implements expert.Expert.
func (e *Expert) Execute(ctx context.Context, m assist.IntentMatch, _ *session.Session) assist.ExpertResult {
	if m.Label == LabelQuery {
		return e.search(ctx, m)
	}
	return e.remember(ctx, m)
}

func (e *Expert) remember(ctx context.Context, m assist.IntentMatch) assist.ExpertResult {
	factText := m.Slots.Get("fact")
	if factText == "" {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "What should I remember?",
			Err:     assist.ErrorValidation,
		}
	}

	name := m.Slots.Get("name")
	entityType := person.EntityThing
	entityID := "note"
	if name != "" {
		entityType = person.EntityPerson
		entityID = strings.ToLower(name)
	}

	f := &person.Fact{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Fact:       factText,
		CreatedAt:  time.Now(),
	}

	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		return e.store.AddFact(ctx, f)
	})
	if kind != assist.ErrorNone {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "I couldn't save that.",
			Err:     kind,
		}
	}

	msg := "Got it, I'll remember that."
	if name != "" {
		msg = fmt.Sprintf("Got it, I'll remember that %s %s.", name, factText)
	}
	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: msg,
		Action:  LabelRemember,
		Payload: f,
	}
}

func (e *Expert) search(ctx context.Context, m assist.IntentMatch) assist.ExpertResult {
	query := m.Slots.Get("query")
	if query == "" {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "Who do you want to know about?",
			Err:     assist.ErrorValidation,
		}
	}

	var facts []person.Fact
	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		var err error
		facts, err = e.store.Search(ctx, query)
		return err
	})
	if kind != assist.ErrorNone {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "I couldn't search my memory right now.",
			Err:     kind,
		}
	}

	if len(facts) == 0 {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Success: true,
			Message: fmt.Sprintf("I don't have anything about %s yet.", query),
			Action:  LabelQuery,
			Payload: facts,
		}
	}

	parts := make([]string, len(facts))
	for i, f := range facts {
		parts[i] = f.Fact
	}
	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: fmt.Sprintf("About %s: %s.", query, strings.Join(parts, "; ")),
		Action:  LabelQuery,
		Payload: facts,
	}
}
