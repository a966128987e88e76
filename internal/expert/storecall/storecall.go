// Package storecall wraps collaborator calls with the retry and error
// classification rules shared by every expert: transient failures are
// retried exactly once after a short backoff, validation problems are never
// retried, and an unreachable collaborator is reported without crashing the
// request.
package storecall

import (
	"context"
	"errors"
	"time"

	"github.com/Strob0t/Hearth/internal/domain"
	"github.com/Strob0t/Hearth/internal/domain/assist"
)

// Do runs fn, retrying once after backoff when the failure is transient.
// The returned ErrorKind is ErrorNone on success.
func Do(ctx context.Context, backoff time.Duration, fn func(ctx context.Context) error) assist.ErrorKind {
	err := fn(ctx)
	if err == nil {
		return assist.ErrorNone
	}

	if Classify(err) == assist.ErrorTransient {
		select {
		case <-ctx.Done():
			return assist.ErrorTransient
		case <-time.After(backoff):
		}
		if err = fn(ctx); err == nil {
			return assist.ErrorNone
		}
	}

	return Classify(err)
}

// Classify maps a collaborator error onto the expert error taxonomy.
func Classify(err error) assist.ErrorKind {
	switch {
	case err == nil:
		return assist.ErrorNone
	case errors.Is(err, domain.ErrTransient),
		errors.Is(err, context.DeadlineExceeded):
		return assist.ErrorTransient
	case errors.Is(err, domain.ErrNotFound):
		// The row the user referred to does not exist; that is their
		// input at fault, not the store.
		return assist.ErrorValidation
	case errors.Is(err, domain.ErrUnavailable):
		return assist.ErrorUnavailable
	default:
		// Unrecognized store errors are not retried.
		return assist.ErrorUnavailable
	}
}
