package flowgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/checkpoint"
)

// Resume continues an interrupted invocation of a thread. It loads the
// thread's checkpoint and runs from the node recorded as next, without
// merging any new input. A thread whose last invocation completed is
// returned unchanged.
//
// Example:
//
//	// Process crashed after "respond" was checkpointed.
//	state, err := compiled.Resume(ctx, store, "user:42")
func (cg *CompiledGraph[S, U]) Resume(ctx Context, store checkpoint.Store, threadID string, opts ...RunOption) (S, error) {
	var zero S
	if ctx == nil {
		return zero, ErrNilContext
	}
	if threadID == "" {
		return zero, ErrThreadIDRequired
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.checkpointStore = store
	cfg.threadID = threadID

	cp, err := store.Get(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return zero, fmt.Errorf("%w: %s", ErrNoCheckpoint, threadID)
	}
	if err != nil {
		return zero, &CheckpointError{Op: "load", Err: err}
	}

	state, err := decodeState[S](cp)
	if err != nil {
		return zero, &CheckpointError{NodeID: cp.NodeID, Op: "load", Err: err}
	}
	cfg.sequence = cp.Sequence

	start := cp.NextNode
	if start == END {
		return state, nil
	}
	if !cg.HasNode(start) {
		return state, fmt.Errorf("%w: %q", ErrInvalidResumeNode, start)
	}

	ctx = withThreadID(ctx, threadID)
	state, _, err = cg.runFromWithObservability(ctx, ctx, state, start, &cfg, nil)
	return state, err
}

// LoadState returns the latest saved state of a thread without running
// anything. found is false when the thread has no checkpoint yet.
func (cg *CompiledGraph[S, U]) LoadState(ctx context.Context, store checkpoint.Store, threadID string) (state S, found bool, err error) {
	if threadID == "" {
		return state, false, ErrThreadIDRequired
	}

	cp, err := store.Get(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return state, false, nil
	}
	if err != nil {
		return state, false, &CheckpointError{Op: "load", Err: err}
	}

	state, err = decodeState[S](cp)
	if err != nil {
		return state, false, &CheckpointError{NodeID: cp.NodeID, Op: "load", Err: err}
	}
	return state, true, nil
}
