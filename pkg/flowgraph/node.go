package flowgraph

// END is the terminal node identifier.
// Use this as an edge target to indicate the graph should terminate.
const END = "__end__"

// NodeFunc is the signature for all node functions.
// Nodes receive the execution context and the full current state, and
// return a partial update holding only what they want to change. The
// graph's Reducer merges the update into state before the next node runs.
//
// The state parameter is passed by value. Nodes must not mutate slices
// or maps reachable from it; they describe changes through the update.
//
// Example:
//
//	func greet(ctx flowgraph.Context, s State) (Update, error) {
//	    return Update{Output: "Hello, " + s.Name}, nil
//	}
type NodeFunc[S, U any] func(ctx Context, state S) (U, error)

// RouterFunc determines the next node based on state.
// It is used for conditional edges where the next node depends on runtime state.
//
// The router should return a valid node ID or flowgraph.END.
// Returning an empty string or an unknown node ID will cause a runtime error.
//
// Example:
//
//	func router(ctx flowgraph.Context, s State) string {
//	    if s.Done {
//	        return flowgraph.END
//	    }
//	    return "process"
//	}
type RouterFunc[S any] func(ctx Context, state S) string

// Reducer merges a partial update into the current state and returns
// the merged state. It must not modify the backing storage of its
// inputs; the engine relies on that to discard updates safely.
type Reducer[S, U any] func(state S, update U) S

// Replace is a Reducer for graphs whose nodes return whole states.
// The update simply becomes the new state.
func Replace[S any]() Reducer[S, S] {
	return func(_ S, update S) S {
		return update
	}
}
