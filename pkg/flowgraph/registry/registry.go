package registry

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe registry for values indexed by key.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	frozen  bool
}

// New creates a new empty registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		entries: make(map[K]V),
	}
}

// Register adds or replaces a value. Panics after Freeze.
func (r *Registry[K, V]) Register(key K, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		panic(fmt.Sprintf("registry: register %v after freeze", key))
	}
	r.entries[key] = value
}

// Freeze rejects any further Register calls.
func (r *Registry[K, V]) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Get returns the value for a key and whether it exists.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// Lookup returns the value for the first key present, trying keys in order.
func (r *Registry[K, V]) Lookup(keys ...K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range keys {
		if v, ok := r.entries[k]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// Range calls fn for each entry of a snapshot until fn returns false.
// Register may be called from fn.
func (r *Registry[K, V]) Range(fn func(K, V) bool) {
	r.mu.RLock()
	snapshot := make(map[K]V, len(r.entries))
	for k, v := range r.entries {
		snapshot[k] = v
	}
	r.mu.RUnlock()

	for k, v := range snapshot {
		if !fn(k, v) {
			return
		}
	}
}
