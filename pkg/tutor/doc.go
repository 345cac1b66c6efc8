// Package tutor is the conversation orchestration core of the language
// tutor: the State a thread accumulates, the step functions that produce
// partial updates (respond, analyze, scaffold, feedback), the level router,
// and the graph that wires them together.
//
// A learner's message enters through a Conversation, which validates the
// level at the boundary and invokes the compiled graph scoped to the
// learner's thread:
//
//	graph, err := tutor.NewGraph()
//	store, err := checkpoint.Open(ctx, os.Getenv("DATABASE_URL"), checkpoint.DefaultRegistry, logger)
//	conv := tutor.NewConversation(graph, store)
//	state, err := conv.Send(ctx, tutor.ThreadID("u1"), tutor.LevelA0, tutor.LanguageSpanish, "Hola")
//
// Routing is deliberately strict: only the exact levels "A0" and "A1" get
// scaffolding; anything else, including "a0", takes the analyze path.
//
// Concurrent sends on distinct threads never interfere. Concurrent sends on
// the same thread are last-write-wins; the checkpoint store offers no
// locking.
package tutor
