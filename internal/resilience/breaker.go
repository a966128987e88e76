// Package resilience provides reliability patterns for external service calls.
package resilience

import (
	"sync"
	"time"
)

// entry tracks failures for a single keyed candidate.
type entry struct {
	failures []time.Time // failure timestamps inside the rolling window
	openedAt time.Time   // zero when closed
}

// WindowBreaker is a keyed circuit breaker with rolling-window semantics.
// A key that records maxFailures failures within window has its circuit
// opened until the window elapses from the moment it opened; no external
// health check is needed to close it again. Counters are shared across all
// callers and every update is a single locked read-modify-write, so two
// concurrent requests can neither double-penalize nor under-penalize a key.
type WindowBreaker struct {
	mu          sync.Mutex
	entries     map[string]*entry
	maxFailures int
	window      time.Duration
	now         func() time.Time // for testing
	onOpen      func(key string)
}

// NewWindowBreaker creates a breaker that opens a key's circuit after
// maxFailures failures within the rolling window.
func NewWindowBreaker(maxFailures int, window time.Duration) *WindowBreaker {
	return &WindowBreaker{
		entries:     make(map[string]*entry),
		maxFailures: maxFailures,
		window:      window,
		now:         time.Now,
	}
}

// OnOpen registers a callback invoked (outside the lock) when a circuit
// transitions from closed to open.
func (b *WindowBreaker) OnOpen(fn func(key string)) {
	b.onOpen = fn
}

// Allow reports whether calls to key are currently permitted.
func (b *WindowBreaker) Allow(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[key]
	if !ok {
		return true
	}
	if e.openedAt.IsZero() {
		return true
	}
	if b.now().Sub(e.openedAt) >= b.window {
		// Window expired: close the circuit and forget old failures.
		e.openedAt = time.Time{}
		e.failures = nil
		return true
	}
	return false
}

// RecordFailure counts a failure for key and opens the circuit when the
// rolling-window threshold is crossed. Increment and check are one
// critical section.
func (b *WindowBreaker) RecordFailure(key string) {
	b.mu.Lock()

	e, ok := b.entries[key]
	if !ok {
		e = &entry{}
		b.entries[key] = e
	}

	now := b.now()
	cutoff := now.Add(-b.window)
	kept := e.failures[:0]
	for _, t := range e.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	e.failures = append(kept, now)

	opened := false
	if e.openedAt.IsZero() && len(e.failures) >= b.maxFailures {
		e.openedAt = now
		opened = true
	}
	b.mu.Unlock()

	if opened && b.onOpen != nil {
		b.onOpen(key)
	}
}

// RecordSuccess clears the failure history for key.
func (b *WindowBreaker) RecordSuccess(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.entries[key]; ok {
		e.failures = nil
		e.openedAt = time.Time{}
	}
}
