// Package lists implements the capability expert for shopping and to-do lists.
package lists

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/list"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/expert/storecall"
	"github.com/Strob0t/Hearth/internal/port/expert"
	"github.com/Strob0t/Hearth/internal/port/liststore"
)

const (
	// Intent labels owned by this expert.
	LabelAdd    = "list.add"
	LabelQuery  = "list.query"
	LabelRemove = "list.remove"
)

var (
	reAdd    = regexp.MustCompile(`(?i)^(?:please\s+)?(?:add|put)\s+(.+?)\s+(?:to|on)\s+(?:my\s+|the\s+)?(?:(shopping|grocery|todo|to-do)\s+)?list$`)
	reNeed   = regexp.MustCompile(`(?i)^(?:i\s+need\s+to\s+buy|we\s+need)\s+(.+)$`)
	reQuery  = regexp.MustCompile(`(?i)^(?:what(?:'s| is| do i need)?\s+(?:to\s+buy\s+)?(?:on|at|from)?\s*(?:my\s+|the\s+)?(?:(shopping|grocery|todo|to-do)\s+)?(?:list|store)|show\s+(?:me\s+)?(?:my\s+|the\s+)?(?:(shopping|grocery|todo|to-do)\s+)?list)\??$`)
	reRemove = regexp.MustCompile(`(?i)^(?:remove|delete|take)\s+(.+?)\s+(?:off|from)\s+(?:my\s+|the\s+)?(?:(shopping|grocery|todo|to-do)\s+)?list$`)
)

// Expert handles list intents against the list store.
type Expert struct {
	store   liststore.Store
	backoff time.Duration
}

// New creates the lists expert.
func New(store liststore.Store, backoff time.Duration) *Expert {
	return &Expert{store: store, backoff: backoff}
}

// Name implements expert.Expert.
func (e *Expert) Name() string { return "lists" }

// Priority implements expert.Expert. Lists write, so they sit above
// pure-query experts but below time-critical reminders/calendar.
func (e *Expert) Priority() int { return 75 }

// Patterns implements expert.Expert.
func (e *Expert) Patterns() []expert.Pattern {
	return []expert.Pattern{
		{Label: LabelAdd, Re: reAdd, Confidence: 0.9, Extract: extractAdd},
		{Label: LabelRemove, Re: reRemove, Confidence: 0.9, Extract: extractAdd},
		{Label: LabelAdd, Re: reNeed, Confidence: 0.75, Extract: extractNeed},
		{Label: LabelQuery, Re: reQuery, Confidence: 0.85, Extract: extractQuery},
	}
}

func extractAdd(_ string, sm []string) assist.Slots {
	s := assist.Slots{"item": strings.TrimSpace(sm[1])}
	if len(sm) > 2 && sm[2] != "" {
		s["list"] = normalizeList(sm[2])
	}
	return s
}

func extractNeed(_ string, sm []string) assist.Slots {
	return assist.Slots{"item": strings.TrimSpace(sm[1])}
}

func extractQuery(_ string, sm []string) assist.Slots {
	for _, g := range sm[1:] {
		if g != "" {
			return assist.Slots{"list": normalizeList(g)}
		}
	}
	return assist.Slots{}
}

func normalizeList(name string) string {
	switch strings.ToLower(name) {
	case "todo", "to-do":
		return "todo"
	default:
		return list.DefaultList
	}
}

// CanHandle implements expert.Expert.
func (e *Expert) CanHandle(m assist.IntentMatch) bool {
	return strings.HasPrefix(m.Label, "list.")
}

// Execute implements expert.Expert.
func (e *Expert) Execute(ctx context.Context, m assist.IntentMatch, _ *session.Session) assist.ExpertResult {
	switch m.Label {
	case LabelAdd:
		return e.add(ctx, m)
	case LabelRemove:
		return e.remove(ctx, m)
	case LabelQuery:
		return e.query(ctx, m)
	default:
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "I don't know how to do that with a list.",
			Err:     assist.ErrorValidation,
		}
	}
}

func (e *Expert) add(ctx context.Context, m assist.IntentMatch) assist.ExpertResult {
	name := m.Slots.Get("item")
	if name == "" {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "What should I add to the list?",
			Err:     assist.ErrorValidation,
		}
	}

	listName := m.Slots.Get("list")
	if listName == "" {
		listName = list.DefaultList
	}

	item := &list.Item{
		ID:        uuid.NewString(),
		List:      listName,
		Name:      name,
		CreatedAt: time.Now(),
	}

	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		return e.store.CreateItem(ctx, item)
	})
	if kind != assist.ErrorNone {
		return e.failure(kind, fmt.Sprintf("I couldn't add %s to your %s list.", name, listName))
	}

	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: fmt.Sprintf("Added %s to your %s list.", name, listName),
		Action:  LabelAdd,
		Payload: item,
	}
}

func (e *Expert) remove(ctx context.Context, m assist.IntentMatch) assist.ExpertResult {
	name := m.Slots.Get("item")
	if name == "" {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "What should I remove from the list?",
			Err:     assist.ErrorValidation,
		}
	}

	listName := m.Slots.Get("list")

	var target *list.Item
	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		items, err := e.store.QueryItems(ctx, list.Filter{List: listName})
		if err != nil {
			return err
		}
		for i := range items {
			if strings.EqualFold(items[i].Name, name) {
				target = &items[i]
				return nil
			}
		}
		return nil
	})
	if kind != assist.ErrorNone {
		return e.failure(kind, fmt.Sprintf("I couldn't look up %s on your list.", name))
	}
	if target == nil {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: fmt.Sprintf("I couldn't find %s on your list.", name),
			Err:     assist.ErrorValidation,
		}
	}

	kind = storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		return e.store.DeleteItem(ctx, target.ID)
	})
	if kind != assist.ErrorNone {
		return e.failure(kind, fmt.Sprintf("I couldn't remove %s from your list.", name))
	}

	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: fmt.Sprintf("Removed %s from your %s list.", name, target.List),
		Action:  LabelRemove,
		Payload: target,
	}
}

func (e *Expert) query(ctx context.Context, m assist.IntentMatch) assist.ExpertResult {
	listName := m.Slots.Get("list")
	if listName == "" {
		listName = list.DefaultList
	}

	var items []list.Item
	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		var err error
		items, err = e.store.QueryItems(ctx, list.Filter{List: listName})
		return err
	})
	if kind != assist.ErrorNone {
		return e.failure(kind, "I couldn't read your list right now.")
	}

	if len(items) == 0 {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Success: true,
			Message: fmt.Sprintf("Your %s list is empty.", listName),
			Action:  LabelQuery,
			Payload: items,
		}
	}

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}

	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: fmt.Sprintf("On your %s list: %s.", listName, strings.Join(names, ", ")),
		Action:  LabelQuery,
		Payload: items,
	}
}

func (e *Expert) failure(kind assist.ErrorKind, msg string) assist.ExpertResult {
	return assist.ExpertResult{Expert: e.Name(), Message: msg, Err: kind}
}
