package checkpoint

import (
	"context"
	"sync"
)

// MemoryStore keeps checkpoints in process memory.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]*Checkpoint // threadID -> latest checkpoint
	closed bool
}

// NewMemoryStore creates a new in-memory checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*Checkpoint),
	}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, threadID string) (*Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	cp, ok := m.data[threadID]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy to prevent modification
	return cp.Clone(), nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, threadID string, cp *Checkpoint) error {
	if cp == nil {
		return ErrNilCheckpoint
	}

	// Copy outside the lock to avoid retaining caller's slice
	stored := cp.Clone()
	stored.ThreadID = threadID

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.data[threadID] = stored
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

func (m *MemoryStore) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Len returns the number of threads with a checkpoint.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}
