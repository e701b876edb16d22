package shipping

import (
	"fmt"
	"sync"
)

// Constructor builds a fresh carrier adapter instance.
type Constructor func() Carrier

// Registry maps the closed set of carrier types to adapter constructors.
// Adapters are constructed per call so each caller can bind its own account
// without sharing mutable state.
type Registry struct {
	constructors map[CarrierType]Constructor
	order        []CarrierType
	mu           sync.RWMutex
}

// NewRegistry creates an empty carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[CarrierType]Constructor),
	}
}

// Register adds a constructor for a carrier type. Registration order is
// preserved and reported by Types; rate-comparison tie-breaking follows the
// caller's account order.
func (r *Registry) Register(t CarrierType, fn Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.constructors[t]; !ok {
		r.order = append(r.order, t)
	}
	r.constructors[t] = fn
}

// New constructs an adapter for a carrier type.
func (r *Registry) New(t CarrierType) (Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.constructors[t]; ok {
		return fn(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedCarrier, t)
}

// Types returns the registered carrier types in registration order.
func (r *Registry) Types() []CarrierType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]CarrierType, len(r.order))
	copy(types, r.order)
	return types
}

// Count returns the number of registered carrier types.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.constructors)
}
