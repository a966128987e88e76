package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "hearth"

// StartAssistSpan starts a span for one assist request.
func StartAssistSpan(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "assist",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
		),
	)
}

// StartExpertSpan starts a span for one expert execution.
func StartExpertSpan(ctx context.Context, expert, label string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "expert.execute",
		trace.WithAttributes(
			attribute.String("expert.name", expert),
			attribute.String("intent.label", label),
		),
	)
}

// StartGenerateSpan starts a span for one model generation attempt.
func StartGenerateSpan(ctx context.Context, route, tier string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "model.generate",
		trace.WithAttributes(
			attribute.String("model.route", route),
			attribute.String("routing.tier", tier),
		),
	)
}
