// Package checkpoint provides thread-keyed checkpoint storage for
// conversation graphs, with an in-process backend and SQL backends.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
)

// Store persists the latest checkpoint for each thread.
// Implementations must be safe for concurrent use. Distinct thread IDs
// are fully independent; concurrent writers to the same thread are
// last-write-wins since the contract has no lock primitive.
type Store interface {
	// Get returns the latest checkpoint for a thread.
	// Returns ErrNotFound if the thread has no checkpoint.
	Get(ctx context.Context, threadID string) (*Checkpoint, error)

	// Put stores cp as the latest checkpoint for threadID,
	// replacing any previous one.
	Put(ctx context.Context, threadID string, cp *Checkpoint) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for checkpoint operations.
var (
	// ErrNotFound indicates a thread has no checkpoint.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")

	// ErrNilCheckpoint indicates Put was called without a checkpoint.
	ErrNilCheckpoint = errors.New("checkpoint cannot be nil")

	// ErrPersistenceUnavailable indicates a durable backend was configured
	// but could not be reached.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

// UnavailableError reports a durable backend that failed at connection
// or schema setup time. It is not retried.
type UnavailableError struct {
	// Backend names the driver ("postgres", "sqlite").
	Backend string
	// Op is the step that failed ("open", "ping", "setup").
	Op string
	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Backend, e.Op, ErrPersistenceUnavailable, e.Err)
}

// Unwrap returns the driver error.
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is reports ErrPersistenceUnavailable so callers can match on the sentinel.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrPersistenceUnavailable
}
