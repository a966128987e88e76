package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	hotel "github.com/Strob0t/Hearth/internal/adapter/otel"
	"github.com/Strob0t/Hearth/internal/config"
	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/event"
	"github.com/Strob0t/Hearth/internal/domain/routing"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/port/cache"
	"github.com/Strob0t/Hearth/internal/port/eventbus"
	"github.com/Strob0t/Hearth/internal/port/llm"
	"github.com/Strob0t/Hearth/internal/resilience"
)

// ErrNoRoute is the sentinel returned when every candidate in a tier's
// chain has been attempted or skipped. Callers convert it to the fixed
// apology, never surface it.
var ErrNoRoute = errors.New("no model route available")

// GenerateOptions tunes a single narration request.
type GenerateOptions struct {
	History    []session.Message
	Stream     llm.StreamFunc
	AllowCache bool // only narration with no side-effect context is cacheable
}

// RouterService is the dynamic model selector: it assesses utterance
// complexity, walks the tier's statically configured candidate chain, and
// keeps per-candidate circuit-breaker state shared across sessions.
//
// The chain is validated at config load to contain no repeated candidate,
// and Generate walks it strictly front to back, so a request can never
// revisit a candidate it already attempted.
type RouterService struct {
	backends *llm.Registry
	models   config.Models
	breaker  *resilience.WindowBreaker
	cache    cache.Cache
	bus      eventbus.Bus
}

// NewRouterService creates the model router.
func NewRouterService(backends *llm.Registry, models config.Models, breaker *resilience.WindowBreaker, c cache.Cache, bus eventbus.Bus) *RouterService {
	if bus == nil {
		bus = eventbus.Nop{}
	}
	svc := &RouterService{
		backends: backends,
		models:   models,
		breaker:  breaker,
		cache:    c,
		bus:      bus,
	}
	breaker.OnOpen(func(key string) {
		slog.Warn("model circuit opened", "route", key)
		_ = bus.Publish(context.Background(), event.Event{
			Type:      event.TypeBreakerOpened,
			Route:     key,
			Timestamp: time.Now(),
		})
	})
	return svc
}

// Assess derives the complexity tier from utterance length, the explicit
// mode hint, and complexity-indicating keywords. Deterministic.
func (r *RouterService) Assess(u assist.Utterance) routing.Tier {
	lower := strings.ToLower(u.Text)
	for _, kw := range r.models.ComplexityKeywords {
		if strings.Contains(lower, kw) {
			return routing.TierHigh
		}
	}

	length := utf8.RuneCountInString(u.Text)
	switch {
	case r.models.HighLength > 0 && length >= r.models.HighLength:
		return routing.TierHigh
	case u.Mode == assist.ModeTask:
		// Explicit task requests default to at least medium.
		return routing.TierMedium
	case r.models.MediumLength > 0 && length >= r.models.MediumLength:
		return routing.TierMedium
	default:
		return routing.TierLow
	}
}

// Select returns the ordered candidate list for a tier with circuit-open
// candidates filtered out. Observability/introspection; Generate does its
// own walk so that breaker state is consulted at call time.
func (r *RouterService) Select(tier routing.Tier) []routing.ModelRoute {
	chain := r.models.Chain(tier)
	out := make([]routing.ModelRoute, 0, len(chain))
	for _, route := range chain {
		if r.breaker.Allow(route.Key()) {
			out = append(out, route)
		}
	}
	return out
}

// Generate walks the tier's candidate chain until one backend produces
// text. Timeouts, transport errors, refusals and empty output all count as
// route failures and advance to the next candidate. Returns ErrNoRoute
// when the chain is exhausted.
func (r *RouterService) Generate(ctx context.Context, tier routing.Tier, prompt string, opts GenerateOptions) (string, *routing.Decision, error) {
	if opts.AllowCache && r.cache != nil && opts.Stream == nil {
		if data, ok, err := r.cache.Get(ctx, cacheKey(tier, prompt)); err == nil && ok {
			return string(data), nil, nil
		}
	}

	chain := r.models.Chain(tier)
	sawSkip := false

	for i, route := range chain {
		key := route.Key()

		if !r.breaker.Allow(key) {
			slog.Debug("skipping circuit-open route", "route", key, "tier", tier)
			sawSkip = true
			continue
		}

		backend, err := r.backends.Get(route.Provider)
		if err != nil {
			slog.Error("route references unknown backend", "route", key, "error", err)
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, r.models.CallTimeout)
		callCtx, span := hotel.StartGenerateSpan(callCtx, key, string(tier))
		result, err := backend.Generate(callCtx, llm.Request{
			Prompt:  prompt,
			History: opts.History,
			Params: llm.Params{
				Model:       route.Model,
				Temperature: r.models.Temperature,
				MaxTokens:   r.models.MaxTokens,
			},
			Stream: opts.Stream,
		})
		span.End()
		cancel()

		if err != nil || strings.TrimSpace(result.Text) == "" {
			if err == nil {
				err = fmt.Errorf("%w: empty completion", llm.ErrRefused)
			}
			slog.Warn("model route failed", "route", key, "tier", tier, "error", err)
			r.breaker.RecordFailure(key)
			continue
		}

		r.breaker.RecordSuccess(key)

		decision := &routing.Decision{
			Route:     route,
			Reason:    reasonFor(i, sawSkip),
			Attempt:   i + 1,
			Timestamp: time.Now(),
		}
		_ = r.bus.Publish(ctx, event.Event{
			Type:      event.TypeRouteChosen,
			Route:     key,
			Reason:    string(decision.Reason),
			Timestamp: decision.Timestamp,
		})

		if opts.AllowCache && r.cache != nil && opts.Stream == nil {
			_ = r.cache.Set(ctx, cacheKey(tier, prompt), []byte(result.Text), 0)
		}

		return result.Text, decision, nil
	}

	_ = r.bus.Publish(ctx, event.Event{
		Type:      event.TypeRouteExhausted,
		Reason:    string(tier),
		Timestamp: time.Now(),
	})
	return "", nil, ErrNoRoute
}

func reasonFor(attempt int, sawSkip bool) routing.Reason {
	switch {
	case attempt == 0 && !sawSkip:
		return routing.ReasonPrimary
	case sawSkip:
		return routing.ReasonCircuitOpen
	default:
		return routing.ReasonFallback
	}
}

func cacheKey(tier routing.Tier, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return "narration:" + string(tier) + ":" + hex.EncodeToString(sum[:])
}
