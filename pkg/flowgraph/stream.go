package flowgraph

// Result is the outcome of an asynchronous or streamed invocation.
type Result[S any] struct {
	State S
	Err   error
}

// Event reports one node's completion during a streamed invocation.
// Update is what the node returned; State is the state after merging it.
type Event[S, U any] struct {
	NodeID string
	Update U
	State  S
}

// RunAsync starts Run in a goroutine. The returned channel receives exactly
// one Result and is then closed.
func (cg *CompiledGraph[S, U]) RunAsync(ctx Context, input U, opts ...RunOption) <-chan Result[S] {
	out := make(chan Result[S], 1)
	go func() {
		defer close(out)
		state, err := cg.Run(ctx, input, opts...)
		out <- Result[S]{State: state, Err: err}
	}()
	return out
}

// Stream runs the graph and delivers an Event per executed node, in order.
// The events channel is closed when the run ends; the result channel then
// receives the final Result and is closed.
//
// A consumer that stops reading must cancel ctx, otherwise the run blocks
// on the next send. Cancellation surfaces as a CancellationError in the
// Result.
//
//	events, result := compiled.Stream(ctx, input, opts...)
//	for ev := range events {
//	    fmt.Println(ev.NodeID)
//	}
//	res := <-result
func (cg *CompiledGraph[S, U]) Stream(ctx Context, input U, opts ...RunOption) (<-chan Event[S, U], <-chan Result[S]) {
	events := make(chan Event[S, U])
	result := make(chan Result[S], 1)

	if ctx == nil {
		close(events)
		result <- Result[S]{Err: ErrNilContext}
		close(result)
		return events, result
	}

	emit := func(ev Event[S, U]) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(result)
		state, err := cg.run(ctx, input, emit, opts...)
		close(events)
		result <- Result[S]{State: state, Err: err}
	}()

	return events, result
}
