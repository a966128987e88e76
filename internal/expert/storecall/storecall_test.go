package storecall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Strob0t/Hearth/internal/domain"
	"github.com/Strob0t/Hearth/internal/domain/assist"
)

func TestDoSuccess(t *testing.T) {
	calls := 0
	kind := Do(context.Background(), 0, func(context.Context) error {
		calls++
		return nil
	})

	if kind != assist.ErrorNone {
		t.Errorf("kind = %q, want none", kind)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesTransientOnce(t *testing.T) {
	calls := 0
	kind := Do(context.Background(), 0, func(context.Context) error {
		calls++
		return domain.ErrTransient
	})

	if kind != assist.ErrorTransient {
		t.Errorf("kind = %q, want transient", kind)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoRetrySucceeds(t *testing.T) {
	calls := 0
	kind := Do(context.Background(), 0, func(context.Context) error {
		calls++
		if calls == 1 {
			return domain.ErrTransient
		}
		return nil
	})

	if kind != assist.ErrorNone {
		t.Errorf("kind = %q, want none after successful retry", kind)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDoUnavailableNotRetried(t *testing.T) {
	calls := 0
	kind := Do(context.Background(), 0, func(context.Context) error {
		calls++
		return domain.ErrUnavailable
	})

	if kind != assist.ErrorUnavailable {
		t.Errorf("kind = %q, want unavailable", kind)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoCanceledContextSkipsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	kind := Do(ctx, 50*time.Millisecond, func(context.Context) error {
		calls++
		return domain.ErrTransient
	})

	if kind != assist.ErrorTransient {
		t.Errorf("kind = %q, want transient", kind)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1: canceled context must not retry", calls)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want assist.ErrorKind
	}{
		{"nil", nil, assist.ErrorNone},
		{"transient sentinel", domain.ErrTransient, assist.ErrorTransient},
		{"deadline", context.DeadlineExceeded, assist.ErrorTransient},
		{"not found", domain.ErrNotFound, assist.ErrorValidation},
		{"wrapped not found", errors.Join(errors.New("delete item"), domain.ErrNotFound), assist.ErrorValidation},
		{"unavailable sentinel", domain.ErrUnavailable, assist.ErrorUnavailable},
		{"wrapped transient", errors.Join(errors.New("query"), domain.ErrTransient), assist.ErrorTransient},
		{"unknown", errors.New("boom"), assist.ErrorUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
