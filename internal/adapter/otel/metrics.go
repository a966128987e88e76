package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Strob0t/Hearth/internal/domain/event"
	"github.com/Strob0t/Hearth/internal/port/eventbus"
)

const meterName = "hearth"

// Metrics holds all assistant metric instruments.
type Metrics struct {
	Requests        metric.Int64Counter
	ActionsExecuted metric.Int64Counter
	ActionsFailed   metric.Int64Counter
	RouteFallbacks  metric.Int64Counter
	BreakerOpened   metric.Int64Counter
	RequestLatency  metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Requests, err = meter.Int64Counter("hearth.requests",
		metric.WithDescription("Number of assist requests handled"))
	if err != nil {
		return nil, err
	}

	m.ActionsExecuted, err = meter.Int64Counter("hearth.actions.executed",
		metric.WithDescription("Number of expert actions executed"))
	if err != nil {
		return nil, err
	}

	m.ActionsFailed, err = meter.Int64Counter("hearth.actions.failed",
		metric.WithDescription("Number of expert actions that failed"))
	if err != nil {
		return nil, err
	}

	m.RouteFallbacks, err = meter.Int64Counter("hearth.route.fallbacks",
		metric.WithDescription("Number of narration requests served by a non-primary route"))
	if err != nil {
		return nil, err
	}

	m.BreakerOpened, err = meter.Int64Counter("hearth.breaker.opened",
		metric.WithDescription("Number of model route circuits opened"))
	if err != nil {
		return nil, err
	}

	m.RequestLatency, err = meter.Float64Histogram("hearth.request.duration_seconds",
		metric.WithDescription("Assist request duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Bus adapts the metric instruments to the event bus port, so counters move
// on the same events dashboards see.
type Bus struct {
	m *Metrics
}

// NewBus wraps metrics as an eventbus.Bus.
func NewBus(m *Metrics) *Bus { return &Bus{m: m} }

var _ eventbus.Bus = (*Bus)(nil)

// Publish increments the instrument matching the event type.
func (b *Bus) Publish(ctx context.Context, ev event.Event) error {
	switch ev.Type {
	case event.TypeActionExecuted:
		b.m.ActionsExecuted.Add(ctx, 1, metric.WithAttributes(
			attribute.String("expert", ev.Expert),
			attribute.String("action", ev.Action),
		))
	case event.TypeActionFailed:
		b.m.ActionsFailed.Add(ctx, 1, metric.WithAttributes(
			attribute.String("expert", ev.Expert),
		))
	case event.TypeRouteChosen:
		if ev.Reason != "primary" {
			b.m.RouteFallbacks.Add(ctx, 1, metric.WithAttributes(
				attribute.String("route", ev.Route),
			))
		}
	case event.TypeBreakerOpened:
		b.m.BreakerOpened.Add(ctx, 1, metric.WithAttributes(
			attribute.String("route", ev.Route),
		))
	}
	return nil
}
