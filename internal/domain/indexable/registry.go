package indexable

import (
	"errors"
	"sort"
	"sync"
)

// ErrRegistryFrozen is returned by Register after Freeze.
var ErrRegistryFrozen = errors.New("indexable registry is frozen")

// Registry is the startup-time catalogue of types that participate in indexing.
// It is append-only until Freeze and read-only afterwards.
type Registry struct {
	mu     sync.RWMutex
	types  map[Type]struct{}
	frozen bool
}

// NewRegistry creates an empty, open registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[Type]struct{})}
}

// Register adds t. Registering the same type again is a no-op.
func (r *Registry) Register(t Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	r.types[t] = struct{}{}
	return nil
}

// Freeze closes the registry to further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Contains reports whether t is registered.
func (r *Registry) Contains(t Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[t]
	return ok
}

// AllTypes returns the registered types sorted by name.
func (r *Registry) AllTypes() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Type, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
