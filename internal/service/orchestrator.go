package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	hotel "github.com/Strob0t/Hearth/internal/adapter/otel"
	"github.com/Strob0t/Hearth/internal/adapter/ws"
	"github.com/Strob0t/Hearth/internal/config"
	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/calendar"
	"github.com/Strob0t/Hearth/internal/domain/event"
	"github.com/Strob0t/Hearth/internal/domain/reminder"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/port/broadcast"
	"github.com/Strob0t/Hearth/internal/port/eventbus"
	"github.com/Strob0t/Hearth/internal/port/expert"
)

// OrchestratorService runs the full request pipeline: session acquisition,
// classification, expert dispatch, optional model narration, composition.
// Requests for the same session serialize; distinct sessions run in parallel.
type OrchestratorService struct {
	sessions   *SessionService
	classifier *ClassifierService
	registry   *expert.Registry
	router     *RouterService
	composer   *ComposerService
	bus        eventbus.Bus
	hub        broadcast.Broadcaster
	cfg        config.Orchestrator
}

// NewOrchestratorService wires the pipeline.
func NewOrchestratorService(
	sessions *SessionService,
	classifier *ClassifierService,
	registry *expert.Registry,
	router *RouterService,
	composer *ComposerService,
	bus eventbus.Bus,
	hub broadcast.Broadcaster,
	cfg config.Orchestrator,
) *OrchestratorService {
	if bus == nil {
		bus = eventbus.Nop{}
	}
	if hub == nil {
		hub = broadcast.Nop{}
	}
	return &OrchestratorService{
		sessions:   sessions,
		classifier: classifier,
		registry:   registry,
		router:     router,
		composer:   composer,
		bus:        bus,
		hub:        hub,
		cfg:        cfg,
	}
}

// Handle processes one utterance end to end and always returns a populated
// response: failures along the way become coherent messages, never errors.
func (o *OrchestratorService) Handle(ctx context.Context, u assist.Utterance) assist.FinalResponse {
	ctx, span := hotel.StartAssistSpan(ctx, u.SessionID)
	defer span.End()

	sess, release := o.sessions.Acquire(u.SessionID)
	defer release()

	grounding := sess.Recent(o.cfg.NarrationDepth)
	matches := o.classifier.Classify(u, sess)

	var resp assist.FinalResponse
	if len(matches) == 1 && matches[0].Label == assist.LabelUnknown {
		resp = o.narrate(ctx, u, sess, grounding, nil)
	} else {
		results := o.dispatch(ctx, u.SessionID, matches, sess)
		if len(results) == 1 && results[0].Executed() && strings.TrimSpace(results[0].Message) == "" {
			// The expert did the work but offered no wording.
			resp = o.narrate(ctx, u, sess, grounding, results)
		} else {
			resp = o.composer.Compose(ctx, u.SessionID, results, "", "")
		}
	}

	sess.Append(session.RoleUser, u.Text)
	sess.Append(session.RoleAssistant, resp.Message)
	o.hub.BroadcastEvent(ctx, ws.EventResponse, resp)

	slog.Info("request handled",
		"session", u.SessionID,
		"intents", len(matches),
		"actions", len(resp.Actions),
		"partial", resp.Partial,
		"model", resp.ModelUsed,
	)
	return resp
}

// narrate is the model path: either no expert matched (or conversation mode
// was forced), or a lone expert executed without wording of its own and the
// model narrates the outcome. Pseudo-action tags in the model output are
// handled by the composer; results already executed this request are passed
// through so they cannot run twice.
func (o *OrchestratorService) narrate(ctx context.Context, u assist.Utterance, sess *session.Session, grounding []session.Message, results []assist.ExpertResult) assist.FinalResponse {
	tier := o.router.Assess(u)
	sess.LastTier = tier

	opts := GenerateOptions{
		History:    grounding,
		AllowCache: len(grounding) == 0 && len(results) == 0, // context-free prompts only
	}
	if u.Mode == assist.ModeConversation {
		opts.Stream = func(chunk string) {
			o.hub.BroadcastEvent(ctx, ws.EventToken, ws.TokenEvent{
				SessionID: u.SessionID,
				Chunk:     chunk,
			})
		}
		opts.AllowCache = false
	}

	text, decision, err := o.router.Generate(ctx, tier, u.Text, opts)
	if err != nil {
		slog.Warn("narration unavailable", "session", u.SessionID, "tier", tier, "error", err)
		resp := assist.FinalResponse{
			SessionID: u.SessionID,
			Message:   assist.MsgApology,
			Results:   results,
		}
		for _, r := range results {
			if r.Executed() {
				resp.Actions = append(resp.Actions, r.Action)
			}
		}
		return resp
	}

	modelUsed := ""
	if decision != nil {
		modelUsed = decision.Route.Key()
	}
	return o.composer.Compose(ctx, u.SessionID, results, text, modelUsed)
}

// dispatch executes every classified sub-intent. Independent sub-intents run
// concurrently under a bounded group; a sub-intent that depends on an
// earlier one runs afterwards with slots forwarded from its dependency's
// payload. Results come back in clause extraction order.
func (o *OrchestratorService) dispatch(ctx context.Context, sessionID string, matches []assist.IntentMatch, sess *session.Session) []assist.ExpertResult {
	results := make([]assist.ExpertResult, len(matches))

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.MaxParallel)
	for i, m := range matches {
		if m.DependsOn >= 0 {
			continue
		}
		g.Go(func() error {
			results[i] = o.execute(ctx, m, sess)
			return nil
		})
	}
	_ = g.Wait()

	for i, m := range matches {
		if m.DependsOn < 0 {
			continue
		}
		forwardSlots(&m, results[m.DependsOn])
		results[i] = o.execute(ctx, m, sess)
	}

	for i := range results {
		o.publish(ctx, sessionID, matches[i], results[i])
	}
	return results
}

// execute runs one expert under the per-expert timeout. The context is
// detached from the caller so a dropped client connection cannot abort a
// side effect halfway through.
func (o *OrchestratorService) execute(ctx context.Context, m assist.IntentMatch, sess *session.Session) assist.ExpertResult {
	e, ok := o.registry.Get(m.Expert)
	if !ok || !e.CanHandle(m) {
		slog.Error("no expert for match", "expert", m.Expert, "label", m.Label)
		return assist.ExpertResult{
			Expert:  m.Expert,
			Message: "I don't know how to handle that.",
			Err:     assist.ErrorValidation,
		}
	}

	execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.ExpertTimeout)
	defer cancel()
	execCtx, span := hotel.StartExpertSpan(execCtx, m.Expert, m.Label)
	defer span.End()
	return e.Execute(execCtx, m, sess)
}

// publish emits one bus event per sub-intent outcome. Best effort.
func (o *OrchestratorService) publish(ctx context.Context, sessionID string, m assist.IntentMatch, r assist.ExpertResult) {
	ev := event.Event{
		Type:      event.TypeActionFailed,
		SessionID: sessionID,
		Expert:    r.Expert,
		Action:    m.Label,
		Detail:    r.Message,
		Timestamp: time.Now(),
	}
	if r.Executed() {
		ev.Type = event.TypeActionExecuted
		ev.Action = r.Action
	}
	if err := o.bus.Publish(ctx, ev); err != nil {
		slog.Debug("event publish failed", "type", ev.Type, "error", err)
	}
}

// forwardSlots copies date/time context out of a dependency's payload into
// the dependent match, so "... and remind me about it" inherits the event
// it refers to.
func forwardSlots(m *assist.IntentMatch, prior assist.ExpertResult) {
	if !prior.Executed() {
		return
	}
	if m.Slots == nil {
		m.Slots = assist.Slots{}
	}

	switch p := prior.Payload.(type) {
	case *calendar.Event:
		setIfEmpty(m.Slots, "date", p.Date)
		setIfEmpty(m.Slots, "time", p.Time)
		setIfEmpty(m.Slots, "subject", p.Title)
	case *reminder.Reminder:
		setIfEmpty(m.Slots, "date", p.DueDate)
		setIfEmpty(m.Slots, "time", p.DueTime)
		setIfEmpty(m.Slots, "subject", p.Title)
	}
}

func setIfEmpty(s assist.Slots, key, val string) {
	if val != "" && s.Get(key) == "" {
		s[key] = val
	}
}
