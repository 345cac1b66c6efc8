package flowgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/observability"
)

// Run executes one invocation of the graph and returns the final state.
//
// With WithCheckpointing and WithThreadID, the thread's latest checkpoint
// is loaded first (an empty state for a new thread), input is merged into
// it with the graph's reducer, and a checkpoint is written after every
// node. Without a store the run starts from the zero state.
//
// On error, returns the state at the point of failure. The failing node's
// update is never merged.
//
// Example:
//
//	ctx := flowgraph.NewContext(context.Background())
//	result, err := compiled.Run(ctx, input,
//	    flowgraph.WithCheckpointing(store),
//	    flowgraph.WithThreadID("user:42"))
func (cg *CompiledGraph[S, U]) Run(ctx Context, input U, opts ...RunOption) (S, error) {
	return cg.run(ctx, input, nil, opts...)
}

// emitFunc receives each node's update as it is merged.
// Returning false stops the run.
type emitFunc[S, U any] func(Event[S, U]) bool

func (cg *CompiledGraph[S, U]) run(ctx Context, input U, emit emitFunc[S, U], opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return result, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.checkpointStore != nil && cfg.threadID == "" {
		return result, ErrThreadIDRequired
	}

	ctx = withThreadID(ctx, cfg.threadID)
	runID := ctx.RunID()
	startTime := time.Now()

	observability.LogRunStart(cfg.logger, runID, cfg.threadID)

	var execCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		execCtx, runSpan = cfg.spans.StartRunSpan(ctx, "tutorgraph", runID, cfg.threadID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	var nodeCount int
	state, err := cg.loadThread(ctx, &cfg)
	if err == nil {
		state = cg.reducer(state, input)
		state, nodeCount, err = cg.runFromWithObservability(execCtx, ctx, state, cg.entryPoint, &cfg, emit)
	}
	result, runErr = state, err

	duration := time.Since(startTime)
	cfg.metrics.RecordGraphRun(ctx, runErr == nil, duration)

	if runErr != nil {
		observability.LogRunError(cfg.logger, runID, runErr, float64(duration.Milliseconds()), lastNodeOf(runErr))
	} else {
		observability.LogRunComplete(cfg.logger, runID, float64(duration.Milliseconds()), nodeCount)
	}

	return result, runErr
}

// lastNodeOf extracts the node an error is attributed to, if any.
func lastNodeOf(err error) string {
	var nodeErr *NodeError
	var panicErr *PanicError
	var maxErr *MaxIterationsError
	var cancelErr *CancellationError
	var routerErr *RouterError
	var cpErr *CheckpointError
	switch {
	case errors.As(err, &nodeErr):
		return nodeErr.NodeID
	case errors.As(err, &panicErr):
		return panicErr.NodeID
	case errors.As(err, &maxErr):
		return maxErr.LastNodeID
	case errors.As(err, &cancelErr):
		return cancelErr.NodeID
	case errors.As(err, &routerErr):
		return routerErr.FromNode
	case errors.As(err, &cpErr):
		return cpErr.NodeID
	}
	return ""
}

// loadThread returns the thread's latest state, or the zero state if the
// thread has no checkpoint. It also positions cfg.sequence after the
// loaded checkpoint so new saves keep counting up.
func (cg *CompiledGraph[S, U]) loadThread(ctx Context, cfg *runConfig) (S, error) {
	var state S
	if cfg.checkpointStore == nil {
		return state, nil
	}

	cp, err := cfg.checkpointStore.Get(ctx, cfg.threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		cfg.metrics.RecordCheckpointLoad(ctx, false)
		observability.LogCheckpointLoad(cfg.logger, cfg.threadID, false, 0)
		return state, nil
	}
	if err != nil {
		return state, &CheckpointError{Op: "load", Err: err}
	}

	state, err = decodeState[S](cp)
	if err != nil {
		return state, &CheckpointError{NodeID: cp.NodeID, Op: "load", Err: err}
	}

	cfg.sequence = cp.Sequence
	cfg.metrics.RecordCheckpointLoad(ctx, true)
	observability.LogCheckpointLoad(cfg.logger, cfg.threadID, true, cp.Sequence)
	return state, nil
}

// decodeState verifies the checkpoint format version and decodes its state.
func decodeState[S any](cp *checkpoint.Checkpoint) (S, error) {
	var state S
	if cp.Version != checkpoint.Version {
		return state, fmt.Errorf("%w: got %d, want %d", ErrCheckpointVersionMismatch, cp.Version, checkpoint.Version)
	}
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return state, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}
	return state, nil
}

// runFromWithObservability executes nodes starting at startNode until END.
// tracingCtx carries span context; fgCtx is the flowgraph Context.
// Returns the final state, node count, and any error.
func (cg *CompiledGraph[S, U]) runFromWithObservability(tracingCtx context.Context, fgCtx Context, state S, startNode string, cfg *runConfig, emit emitFunc[S, U]) (S, int, error) {
	current := startNode
	iterations := 0
	nodeCount := 0

	for current != END {
		iterations++
		if iterations > cfg.maxIterations {
			return state, nodeCount, &MaxIterationsError{
				Max:        cfg.maxIterations,
				LastNodeID: current,
				State:      state,
			}
		}

		select {
		case <-fgCtx.Done():
			return state, nodeCount, &CancellationError{
				NodeID: current,
				State:  state,
				Cause:  fgCtx.Err(),
			}
		default:
		}

		observability.LogNodeStart(cfg.logger, current)

		nodeTracingCtx := tracingCtx
		var nodeSpan trace.Span
		if cfg.tracingEnabled {
			nodeTracingCtx, nodeSpan = cfg.spans.StartNodeSpan(tracingCtx, current)
		}

		nodeStart := time.Now()
		update, nodeErr := cg.executeNode(fgCtx, current, state)
		nodeDuration := time.Since(nodeStart)

		if nodeErr != nil && fgCtx.Err() != nil && errors.Is(nodeErr, fgCtx.Err()) {
			nodeErr = &CancellationError{
				NodeID:       current,
				State:        state,
				Cause:        fgCtx.Err(),
				WasExecuting: true,
			}
		}

		cfg.metrics.RecordNodeExecution(nodeTracingCtx, current, nodeDuration, nodeErr)
		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(nodeSpan, nodeErr)
		}

		if nodeErr != nil {
			observability.LogNodeError(cfg.logger, current, nodeErr)
			return state, nodeCount, nodeErr
		}
		observability.LogNodeComplete(cfg.logger, current, float64(nodeDuration.Milliseconds()))
		nodeCount++

		state = cg.reducer(state, update)

		next, err := cg.nextNode(fgCtx, state, current)
		if err != nil {
			return state, nodeCount, err
		}

		if cfg.checkpointStore != nil {
			if err := cg.saveCheckpoint(fgCtx, cfg, current, state, next); err != nil {
				return state, nodeCount, err
			}
		}

		if emit != nil && !emit(Event[S, U]{NodeID: current, Update: update, State: state}) {
			return state, nodeCount, &CancellationError{
				NodeID: next,
				State:  state,
				Cause:  fgCtx.Err(),
			}
		}

		current = next
	}

	return state, nodeCount, nil
}

// saveCheckpoint persists state after nodeID ran. nextNode records where a
// resumed run continues; END marks a completed turn.
func (cg *CompiledGraph[S, U]) saveCheckpoint(ctx Context, cfg *runConfig, nodeID string, state S, nextNode string) error {
	stateBytes, err := json.Marshal(state)
	if err != nil {
		return cg.checkpointFailure(cfg, nodeID, "serialize", fmt.Errorf("%w: %v", ErrSerializeState, err))
	}

	cfg.sequence++
	cp := checkpoint.New(cfg.threadID, nodeID, cfg.sequence, stateBytes, nextNode)

	// A completed node is persisted even if the caller has since cancelled.
	if err := cfg.checkpointStore.Put(context.WithoutCancel(ctx), cfg.threadID, cp); err != nil {
		cfg.sequence--
		return cg.checkpointFailure(cfg, nodeID, "save", err)
	}

	observability.LogCheckpoint(cfg.logger, nodeID, len(stateBytes))
	cfg.metrics.RecordCheckpoint(ctx, nodeID, int64(len(stateBytes)))
	return nil
}

func (cg *CompiledGraph[S, U]) checkpointFailure(cfg *runConfig, nodeID, op string, err error) error {
	if cfg.checkpointFailureFatal {
		return &CheckpointError{NodeID: nodeID, Op: op, Err: err}
	}
	observability.LogCheckpointError(cfg.logger, nodeID, op, err)
	return nil
}

// executeNode runs a single node with panic recovery.
// On error the returned update must be discarded.
func (cg *CompiledGraph[S, U]) executeNode(ctx Context, nodeID string, state S) (update U, err error) {
	fn, exists := cg.nodes[nodeID]
	if !exists {
		return update, &NodeError{
			NodeID: nodeID,
			Op:     "lookup",
			Err:    fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID),
		}
	}

	nodeCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		nodeCtx = ec.withNodeID(nodeID)
	}

	defer func() {
		if r := recover(); r != nil {
			var zero U
			update = zero
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	update, err = fn(nodeCtx, state)
	if err != nil {
		var zero U
		return zero, &NodeError{
			NodeID: nodeID,
			Op:     "execute",
			Err:    err,
		}
	}

	return update, nil
}

// nextNode determines the next node to execute.
// Conditional edges take precedence over simple edges.
func (cg *CompiledGraph[S, U]) nextNode(ctx Context, state S, current string) (string, error) {
	if router, exists := cg.conditionalEdges[current]; exists {
		routerCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			routerCtx = ec.withNodeID(current)
		}

		next := router(routerCtx, state)
		if next == "" {
			return "", &RouterError{
				FromNode: current,
				Returned: next,
				Err:      ErrInvalidRouterResult,
			}
		}
		if next != END {
			if _, exists := cg.nodes[next]; !exists {
				return "", &RouterError{
					FromNode: current,
					Returned: next,
					Err:      ErrRouterTargetNotFound,
				}
			}
		}
		return next, nil
	}

	edges := cg.edges[current]
	if len(edges) == 0 {
		return "", &NodeError{
			NodeID: current,
			Op:     "routing",
			Err:    fmt.Errorf("no outgoing edge from node %s", current),
		}
	}
	return edges[0], nil
}
