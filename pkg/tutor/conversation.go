package tutor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph"
	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/checkpoint"
)

// Conversation runs learner turns through a graph, scoped to per-user
// threads in a checkpoint store. It is safe for concurrent use.
type Conversation struct {
	graph   *Graph
	store   checkpoint.Store
	logger  *slog.Logger
	runOpts []flowgraph.RunOption
}

// ConversationOption configures a Conversation.
type ConversationOption func(*Conversation)

// WithLogger sets the logger handed to step functions.
func WithLogger(logger *slog.Logger) ConversationOption {
	return func(c *Conversation) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRunOptions adds engine options to every turn, e.g. tracing.
func WithRunOptions(opts ...flowgraph.RunOption) ConversationOption {
	return func(c *Conversation) {
		c.runOpts = append(c.runOpts, opts...)
	}
}

// NewConversation binds graph to store.
func NewConversation(graph *Graph, store checkpoint.Store, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		graph:  graph,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ThreadID returns the thread for userID.
func (c *Conversation) ThreadID(userID string) string {
	return ThreadID(userID)
}

// NewThread returns a fresh thread id for userID. Nothing is written until
// the first Send on it.
func (c *Conversation) NewThread(userID string) string {
	return NewThreadID(userID)
}

// Send runs one learner turn on threadID and returns the thread's state
// after it.
//
// The level is validated here and an unsupported one is a
// *ConfigurationError. An unsupported language falls back to
// DefaultLanguage. Analysis results from the previous turn are cleared
// before the graph runs.
func (c *Conversation) Send(ctx context.Context, threadID string, level Level, language Language, text string) (State, error) {
	input, err := turnInput(level, language, text)
	if err != nil {
		return State{}, err
	}
	return c.graph.Run(c.context(ctx), input, c.options(threadID)...)
}

// Stream is Send with per-node events. The caller must drain events until
// it closes, or cancel ctx, and then read the result.
func (c *Conversation) Stream(ctx context.Context, threadID string, level Level, language Language, text string) (<-chan flowgraph.Event[State, Update], <-chan flowgraph.Result[State]) {
	input, err := turnInput(level, language, text)
	if err != nil {
		return failedStream(err)
	}
	return c.graph.Stream(c.context(ctx), input, c.options(threadID)...)
}

// History returns the saved state of threadID. found is false for a
// thread that has never been used.
func (c *Conversation) History(ctx context.Context, threadID string) (state State, found bool, err error) {
	return c.graph.LoadState(ctx, c.store, threadID)
}

// Resume finishes a turn on threadID that was interrupted after a
// checkpoint, for instance by a crash between respond and feedback.
func (c *Conversation) Resume(ctx context.Context, threadID string) (State, error) {
	return c.graph.Resume(c.context(ctx), c.store, threadID, c.runOpts...)
}

func (c *Conversation) context(ctx context.Context) flowgraph.Context {
	return flowgraph.NewContext(ctx, flowgraph.WithLogger(c.logger))
}

func (c *Conversation) options(threadID string) []flowgraph.RunOption {
	opts := make([]flowgraph.RunOption, 0, len(c.runOpts)+2)
	opts = append(opts, c.runOpts...)
	return append(opts,
		flowgraph.WithCheckpointing(c.store),
		flowgraph.WithThreadID(threadID))
}

// turnInput validates a learner turn and builds the graph input for it.
func turnInput(level Level, language Language, text string) (Update, error) {
	if err := ValidateLevel(level); err != nil {
		return Update{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Update{}, ErrEmptyMessage
	}
	if !language.Valid() {
		language = DefaultLanguage
	}

	return Update{}.
		AppendMessages(Human(text)).
		SetLevel(level).
		SetLanguage(language).
		ResetTurn(), nil
}

func failedStream(err error) (<-chan flowgraph.Event[State, Update], <-chan flowgraph.Result[State]) {
	events := make(chan flowgraph.Event[State, Update])
	close(events)
	result := make(chan flowgraph.Result[State], 1)
	result <- flowgraph.Result[State]{Err: err}
	close(result)
	return events, result
}
