/*
Package flowgraph runs small directed graphs of steps over a typed state.

A graph is built from nodes that read the current state S and return an
update U. A Reducer merges each update into the state, so nodes never
mutate state directly. Edges are either fixed or chosen at runtime by a
RouterFunc. Execution is sequential: exactly one node runs at a time.

	graph := flowgraph.NewGraph[State, Update](Merge).
	    AddNode("respond", respond).
	    AddNode("analyze", analyze).
	    AddEdge("respond", "analyze").
	    AddEdge("analyze", flowgraph.END).
	    SetEntry("respond")

	compiled, err := graph.Compile()

# Threads and checkpoints

With WithCheckpointing and WithThreadID a run is scoped to a thread: the
thread's last saved state is loaded, the input update is merged into it,
and the state is checkpointed after every node. Two threads never see
each other's state. The checkpoint subpackage provides in-memory, SQLite
and PostgreSQL stores.

	state, err := compiled.Run(ctx, input,
	    flowgraph.WithCheckpointing(store),
	    flowgraph.WithThreadID("user:42"))

# Invocation styles

Run blocks until the graph reaches END. RunAsync returns a channel that
yields the final Result. Stream yields an Event per node as it completes,
then the final Result.

# Errors

Node failures are wrapped in NodeError, panics in PanicError and context
cancellation in CancellationError. A failing node's update is discarded.
Errors are returned as-is; the engine never retries.
*/
package flowgraph
