package service

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/event"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/port/expert"
	"github.com/Strob0t/Hearth/internal/port/llm"
)

// fakeExpert is a configurable expert.Expert for pipeline tests.
type fakeExpert struct {
	name      string
	priority  int
	patterns  []expert.Pattern
	canHandle func(m assist.IntentMatch) bool
	execute   func(ctx context.Context, m assist.IntentMatch, sess *session.Session) assist.ExpertResult

	mu    sync.Mutex
	calls []assist.IntentMatch
}

func (f *fakeExpert) Name() string               { return f.name }
func (f *fakeExpert) Priority() int              { return f.priority }
func (f *fakeExpert) Patterns() []expert.Pattern { return f.patterns }

func (f *fakeExpert) CanHandle(m assist.IntentMatch) bool {
	if f.canHandle != nil {
		return f.canHandle(m)
	}
	return m.Expert == f.name
}

func (f *fakeExpert) Execute(ctx context.Context, m assist.IntentMatch, sess *session.Session) assist.ExpertResult {
	f.mu.Lock()
	f.calls = append(f.calls, m)
	f.mu.Unlock()
	if f.execute != nil {
		return f.execute(ctx, m, sess)
	}
	return assist.ExpertResult{
		Expert:  f.name,
		Success: true,
		Message: "Done.",
		Action:  m.Label,
	}
}

func (f *fakeExpert) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func pattern(label, re string, conf float64) expert.Pattern {
	return expert.Pattern{
		Label:      label,
		Re:         regexp.MustCompile(`(?i)` + re),
		Confidence: conf,
	}
}

// fakeBackend is a scriptable llm.Backend.
type fakeBackend struct {
	name     string
	generate func(ctx context.Context, req llm.Request) (llm.Result, error)

	mu    sync.Mutex
	calls []llm.Request
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.generate(ctx, req)
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// memCache is an in-memory cache.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// recordBus collects published events.
type recordBus struct {
	mu     sync.Mutex
	events []event.Event
}

func (b *recordBus) Publish(_ context.Context, ev event.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordBus) byType(t event.Type) []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []event.Event
	for _, ev := range b.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
