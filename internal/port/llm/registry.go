package llm

import (
	"fmt"
	"sync"
)

// Registry maps provider names to backends. Populated at startup.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds a backend by its Name. Duplicates panic at startup.
func (r *Registry) Register(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := b.Name()
	if _, exists := r.backends[name]; exists {
		panic(fmt.Sprintf("llm: duplicate registration for %q", name))
	}
	r.backends[name] = b
}

// Get returns the backend registered under name.
func (r *Registry) Get(name string) (Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("llm: unknown backend %q", name)
	}
	return b, nil
}
