package transform

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps configured backend names to adapters.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
	fallback string
}

// NewRegistry constructs an empty registry. The first registered backend
// becomes the default unless SetDefault is called.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds a backend under its Name. Registering the same name twice replaces it.
func (r *Registry) Register(b Backend) {
	if b == nil {
		return
	}
	name := normalizeName(b.Name())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = b
	if r.fallback == "" {
		r.fallback = name
	}
}

// SetDefault picks the backend used when a request names none.
func (r *Registry) SetDefault(name string) error {
	name = normalizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backends[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	r.fallback = name
	return nil
}

// Default returns the default backend name, or "" when nothing is registered.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// Get returns the backend by name; an empty name selects the default.
func (r *Registry) Get(name string) (Backend, error) {
	name = normalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.fallback
	}
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return b, nil
}

// Names lists registered backends in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
