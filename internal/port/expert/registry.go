package expert

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the static set of experts the orchestrator dispatches to.
// Experts are registered at startup; the registry is read-only afterwards.
type Registry struct {
	mu      sync.RWMutex
	experts map[string]Expert
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{experts: make(map[string]Expert)}
}

// Register adds an expert by its Name. Duplicate registration is a
// programming error and panics, matching startup-time wiring expectations.
func (r *Registry) Register(e Expert) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := e.Name()
	if _, exists := r.experts[name]; exists {
		panic(fmt.Sprintf("expert: duplicate registration for %q", name))
	}
	r.experts[name] = e
}

// Get returns the expert registered under name.
func (r *Registry) Get(name string) (Expert, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.experts[name]
	return e, ok
}

// All returns every registered expert ordered by descending priority,
// then name for determinism.
func (r *Registry) All() []Expert {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Expert, 0, len(r.experts))
	for _, e := range r.experts {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority() != out[j].Priority() {
			return out[i].Priority() > out[j].Priority()
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Names returns the registered expert names ordered by descending priority.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.Name()
	}
	return names
}
