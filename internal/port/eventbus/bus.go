// Package eventbus defines the port for publishing assistant events.
package eventbus

import (
	"context"

	"github.com/Strob0t/Hearth/internal/domain/event"
)

// Bus publishes assistant events for downstream consumers (dashboards,
// audit). Publishing is best-effort observability: implementations log and
// swallow transport failures rather than failing the request path.
type Bus interface {
	Publish(ctx context.Context, ev event.Event) error
}

// Nop is a Bus that discards events, for tests and bus-less deployments.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(context.Context, event.Event) error { return nil }

// Fanout delivers each event to every bus in order. Errors do not stop
// delivery; the first one is returned.
type Fanout []Bus

// Publish sends the event to all buses.
func (f Fanout) Publish(ctx context.Context, ev event.Event) error {
	var first error
	for _, b := range f {
		if err := b.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
