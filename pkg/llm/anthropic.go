package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicResponder generates replies with the Anthropic Messages API.
type AnthropicResponder struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicResponder creates a responder. Extra request options (base
// URL, HTTP client) are passed through to the SDK client. The SDK's own
// retries are disabled; wrap the responder in Retrying instead.
func NewAnthropicResponder(apiKey, model string, maxTokens int, opts ...aoption.RequestOption) *AnthropicResponder {
	if model == "" {
		model = DefaultAnthropicModel
	}
	all := append([]aoption.RequestOption{
		aoption.WithAPIKey(strings.TrimSpace(apiKey)),
		aoption.WithMaxRetries(0),
	}, opts...)
	return &AnthropicResponder{
		client:    anthropic.NewClient(all...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Respond implements Responder.
func (a *AnthropicResponder) Respond(ctx context.Context, req Request) (Response, error) {
	model := a.model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := a.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  buildAnthropicMessages(req.Messages),
	}
	if system := strings.TrimSpace(req.System); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	start := time.Now()
	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, wrapAnthropicError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(tb.Text)
		}
	}
	content := strings.TrimSpace(text.String())
	if content == "" {
		return Response{}, ErrEmptyReply
	}

	return Response{
		Content: content,
		Model:   string(msg.Model),
		Usage: TokenUsage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
		Duration: time.Since(start),
	}, nil
}

// buildAnthropicMessages converts turns. The API requires the first turn to
// come from the user, so a conversation that opens with the assistant gets
// a placeholder user turn.
func buildAnthropicMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs)+1)
	for i, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		switch m.Role {
		case RoleAssistant:
			if i == 0 {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock("Hello.")))
			}
			out = append(out, anthropic.NewAssistantMessage(block))
		default:
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	if len(out) == 0 {
		out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock("Hello.")))
	}
	return out
}

func wrapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &StatusError{Provider: "anthropic", StatusCode: apiErr.StatusCode, Err: err}
	}
	return err
}
