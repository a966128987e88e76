package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/event"
	"github.com/Strob0t/Hearth/internal/port/eventbus"
	"github.com/Strob0t/Hearth/internal/port/expert"
)

// reAction matches a well-formed pseudo-action tag emitted by a model:
// [[verb key="value" key2="value2"]]. Anything bracket-shaped that does not
// parse is stripped, never echoed.
var (
	reAction = regexp.MustCompile(`\[\[([a-z_]+)((?:\s+[a-z_]+="[^"\[\]]*")*)\s*\]\]`)
	reAttr   = regexp.MustCompile(`([a-z_]+)="([^"]*)"`)
	reStray  = regexp.MustCompile(`\[\[[^\]]*\]\]`)
	reSpaces = regexp.MustCompile(`\s{2,}`)
)

// pseudoAction maps an allowlisted verb onto the expert call it stands for.
// Verbs outside this table are stripped from model output unexecuted.
type pseudoAction struct {
	label    string
	expert   string
	slots    map[string]string // tag attribute -> slot key
	required string            // attribute that must be present
}

var pseudoActions = map[string]pseudoAction{
	"remind": {
		label:    "reminder.create",
		expert:   "reminders",
		slots:    map[string]string{"title": "body", "date": "date", "time": "time"},
		required: "title",
	},
	"add_item": {
		label:    "list.add",
		expert:   "lists",
		slots:    map[string]string{"item": "item", "list": "list"},
		required: "item",
	},
	"create_event": {
		label:    "calendar.create",
		expert:   "calendar",
		slots:    map[string]string{"title": "body", "date": "date", "time": "time"},
		required: "title",
	},
	"remember": {
		label:    "person.remember",
		expert:   "people",
		slots:    map[string]string{"name": "name", "fact": "fact"},
		required: "fact",
	},
}

// ComposerService assembles the single final response: expert outcomes first
// in extraction order, model narration after, with any pseudo-action tags in
// the narration executed through the expert registry or stripped.
type ComposerService struct {
	registry *expert.Registry
	bus      eventbus.Bus
}

// NewComposerService creates the composer. Pseudo-action outcomes are
// published on bus so they appear on the same streams as dispatched actions.
func NewComposerService(registry *expert.Registry, bus eventbus.Bus) *ComposerService {
	if bus == nil {
		bus = eventbus.Nop{}
	}
	return &ComposerService{registry: registry, bus: bus}
}

// Compose builds the FinalResponse from the results the orchestrator
// collected (already in clause extraction order) and the optional narration
// text. It is the only place pseudo-action tags are interpreted.
func (c *ComposerService) Compose(ctx context.Context, sessionID string, results []assist.ExpertResult, narration, modelUsed string) assist.FinalResponse {
	executed := make(map[string]bool)
	for _, r := range results {
		if r.Executed() {
			executed[r.Action] = true
		}
	}

	if narration != "" {
		clean, extra := c.applyPseudoActions(ctx, sessionID, narration, executed)
		narration = clean
		results = append(results, extra...)
	}

	var successes, failures, actions []string
	for _, r := range results {
		if r.Executed() {
			actions = append(actions, r.Action)
		}
		if r.Success {
			if r.Message != "" {
				successes = append(successes, r.Message)
			}
		} else if r.Message != "" {
			failures = append(failures, r.Message)
		}
	}

	msg := c.assemble(successes, failures, narration)
	if msg == "" {
		msg = assist.MsgNoUnderstanding
	}

	return assist.FinalResponse{
		SessionID: sessionID,
		Message:   msg,
		Actions:   actions,
		Partial:   len(failures) > 0 && len(successes) > 0,
		Results:   results,
		ModelUsed: modelUsed,
	}
}

// assemble joins the pieces into one coherent message: what was done, then
// what could not be done, then free-text narration.
func (c *ComposerService) assemble(successes, failures []string, narration string) string {
	var parts []string
	if len(successes) > 0 {
		parts = append(parts, strings.Join(successes, " "))
	}
	if len(failures) > 0 {
		joined := strings.Join(failures, " ")
		if len(successes) > 0 {
			joined = "But " + lowerFirst(joined)
		}
		parts = append(parts, joined)
	}
	if narration != "" {
		parts = append(parts, narration)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// applyPseudoActions executes allowlisted, not-yet-executed pseudo-action
// tags found in model output and strips every tag from the text. Malformed
// or unknown tags are stripped without execution. A tag whose action label
// already ran this request is stripped too: an action executes at most once
// per request no matter how it was requested.
func (c *ComposerService) applyPseudoActions(ctx context.Context, sessionID, text string, executed map[string]bool) (string, []assist.ExpertResult) {
	var extra []assist.ExpertResult

	clean := reAction.ReplaceAllStringFunc(text, func(tag string) string {
		sm := reAction.FindStringSubmatch(tag)
		verb := sm[1]

		spec, ok := pseudoActions[verb]
		if !ok {
			slog.Debug("stripping unknown pseudo-action", "verb", verb)
			return ""
		}
		if executed[spec.label] {
			slog.Debug("stripping duplicate pseudo-action", "label", spec.label)
			return ""
		}

		slots := assist.Slots{}
		for _, attr := range reAttr.FindAllStringSubmatch(sm[2], -1) {
			if key, mapped := spec.slots[attr[1]]; mapped {
				slots[key] = strings.TrimSpace(attr[2])
			}
		}
		if spec.required != "" && slots[spec.slots[spec.required]] == "" {
			slog.Debug("stripping incomplete pseudo-action", "verb", verb)
			return ""
		}

		e, found := c.registry.Get(spec.expert)
		if !found {
			return ""
		}
		m := assist.IntentMatch{
			Label:      spec.label,
			Confidence: 1,
			Expert:     spec.expert,
			Slots:      slots,
			DependsOn:  -1,
		}
		if !e.CanHandle(m) {
			return ""
		}

		r := e.Execute(ctx, m, nil)
		extra = append(extra, r)
		if r.Executed() {
			executed[r.Action] = true
		}
		c.publish(ctx, sessionID, spec.label, r)
		return ""
	})

	// Anything bracket-shaped that survived the strict parse is garbage.
	clean = reStray.ReplaceAllString(clean, "")
	clean = reSpaces.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean), extra
}

// publish emits the bus event for one pseudo-action outcome, mirroring what
// the orchestrator emits for dispatched sub-intents. Best effort.
func (c *ComposerService) publish(ctx context.Context, sessionID, label string, r assist.ExpertResult) {
	ev := event.Event{
		Type:      event.TypeActionFailed,
		SessionID: sessionID,
		Expert:    r.Expert,
		Action:    label,
		Detail:    r.Message,
		Timestamp: time.Now(),
	}
	if r.Executed() {
		ev.Type = event.TypeActionExecuted
		ev.Action = r.Action
	}
	if err := c.bus.Publish(ctx, ev); err != nil {
		slog.Debug("event publish failed", "type", ev.Type, "error", err)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	// Leave "I couldn't ..." alone; only fold sentence-initial capitals that
	// are not the pronoun.
	if strings.HasPrefix(s, "I ") || strings.HasPrefix(s, "I'") {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
