package tutor

import (
	"fmt"

	"github.com/randalmurphal/tutorgraph/pkg/config"
	"github.com/randalmurphal/tutorgraph/pkg/flowgraph"
	"github.com/randalmurphal/tutorgraph/pkg/llm"
)

// Graph is the compiled tutoring graph.
type Graph = flowgraph.CompiledGraph[State, Update]

type graphConfig struct {
	responder llm.Responder
	topology  string
}

// GraphOption configures NewGraph.
type GraphOption func(*graphConfig)

// WithResponder sets the model behind the respond step. The default is
// ScriptedResponder.
func WithResponder(r llm.Responder) GraphOption {
	return func(c *graphConfig) {
		c.responder = r
	}
}

// WithTopology selects config.TopologyDesigned (default) or
// config.TopologyMinimal.
func WithTopology(topology string) GraphOption {
	return func(c *graphConfig) {
		c.topology = topology
	}
}

// NewGraph builds and compiles the tutoring graph.
//
// The designed topology is
//
//	respond -> Route -> scaffold | analyze -> feedback -> END
//
// and the minimal topology is respond -> END.
func NewGraph(opts ...GraphOption) (*Graph, error) {
	cfg := graphConfig{topology: config.TopologyDesigned}
	for _, opt := range opts {
		opt(&cfg)
	}

	responder := NewResponder(cfg.responder)
	g := flowgraph.NewGraph[State, Update](Merge).
		AddNode(NodeRespond, responder.Respond).
		SetEntry(NodeRespond)

	switch cfg.topology {
	case config.TopologyDesigned, "":
		g.AddNode(NodeScaffold, Scaffold).
			AddNode(NodeAnalyze, Analyze).
			AddNode(NodeFeedback, Feedback).
			AddConditionalEdge(NodeRespond, Route).
			AddEdge(NodeScaffold, NodeFeedback).
			AddEdge(NodeAnalyze, NodeFeedback).
			AddEdge(NodeFeedback, flowgraph.END)
	case config.TopologyMinimal:
		g.AddEdge(NodeRespond, flowgraph.END)
	default:
		return nil, &ConfigurationError{Field: "topology", Value: cfg.topology}
	}

	compiled, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile tutor graph: %w", err)
	}
	return compiled, nil
}
