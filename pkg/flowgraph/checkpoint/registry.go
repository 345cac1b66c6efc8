package checkpoint

import "sync"

// Registry owns a lazily constructed, process-wide MemoryStore.
// Graphs receive the store from a Registry at construction time rather
// than reaching for a global, so tests can use a fresh Registry each.
type Registry struct {
	mu    sync.Mutex
	store *MemoryStore
}

// DefaultRegistry is the process-wide registry used by Open when the
// caller does not supply one.
var DefaultRegistry = &Registry{}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// GetOrCreate returns the registry's store, creating it on first use.
// Every call returns the same store until Reset or until that store is closed.
func (r *Registry) GetOrCreate() *MemoryStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store == nil || r.store.isClosed() {
		r.store = NewMemoryStore()
	}
	return r.store
}

// Reset drops the current store. The next GetOrCreate builds a new one.
// Stores already handed out keep working but are no longer shared.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store = nil
}
