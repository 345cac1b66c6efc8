package tutor

import (
	"fmt"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph"
)

// Feedback turns grammar corrections into display-ready messages. Tone
// follows the level: encouraging at A0, plain at A1, and with the grammar
// topic named at A2 and B1. No corrections means no messages.
func Feedback(_ flowgraph.Context, s State) (Update, error) {
	out := make([]FeedbackMessage, 0, len(s.GrammarFeedback))
	level := s.EffectiveLevel()
	for _, c := range s.GrammarFeedback {
		out = append(out, FeedbackMessage{
			Text:     formatCorrection(c, level),
			Severity: c.Severity,
			Rule:     c.Rule,
		})
	}
	return Update{}.SetFeedbackMessages(out), nil
}

func formatCorrection(c GrammarCorrection, level Level) string {
	switch level {
	case LevelA0:
		return fmt.Sprintf("Nice try! We say %q instead of %q.", c.Corrected, c.Original)
	case LevelA2, LevelB1:
		text := fmt.Sprintf("%q should be %q.", c.Original, c.Corrected)
		if c.Rule != "" {
			text += fmt.Sprintf(" Rule (%s): %s", c.Rule, c.Explanation)
		} else if c.Explanation != "" {
			text += " " + c.Explanation
		}
		return text
	default:
		text := fmt.Sprintf("Try %q instead of %q.", c.Corrected, c.Original)
		if c.Explanation != "" {
			text += " " + c.Explanation
		}
		return text
	}
}
