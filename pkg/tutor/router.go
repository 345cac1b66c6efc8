package tutor

import "github.com/randalmurphal/tutorgraph/pkg/flowgraph"

// Node names in the tutoring graph.
const (
	NodeRespond  = "respond"
	NodeAnalyze  = "analyze"
	NodeScaffold = "scaffold"
	NodeFeedback = "feedback"
)

// Route picks the step after respond. Exactly "A0" and "A1" go to
// scaffold; every other value, including "", "a0" and unknown levels, goes
// to analyze. Route never mutates s and never fails.
func Route(_ flowgraph.Context, s State) string {
	return RouteLevel(s.Level)
}

// RouteLevel is Route for a bare level.
func RouteLevel(l Level) string {
	switch l {
	case LevelA0, LevelA1:
		return NodeScaffold
	default:
		return NodeAnalyze
	}
}
