package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIResponder generates replies with the OpenAI Chat Completions API.
type OpenAIResponder struct {
	client    openai.Client
	model     string
	maxTokens int
}

// NewOpenAIResponder creates a responder. The SDK's own retries are
// disabled; wrap the responder in Retrying instead.
func NewOpenAIResponder(apiKey, model string, maxTokens int, opts ...ooption.RequestOption) *OpenAIResponder {
	if model == "" {
		model = DefaultOpenAIModel
	}
	all := append([]ooption.RequestOption{
		ooption.WithAPIKey(strings.TrimSpace(apiKey)),
		ooption.WithMaxRetries(0),
	}, opts...)
	return &OpenAIResponder{
		client:    openai.NewClient(all...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Respond implements Responder.
func (o *OpenAIResponder) Respond(ctx context.Context, req Request) (Response, error) {
	model := o.model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := o.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if system := strings.TrimSpace(req.System); system != "" {
		msgs = append(msgs, openai.SystemMessage(system))
	}
	for _, m := range req.Messages {
		if m.Role == RoleAssistant {
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		} else {
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(maxTokens))
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Response{}, &StatusError{Provider: "openai", StatusCode: apiErr.StatusCode, Err: err}
		}
		return Response{}, err
	}
	if len(resp.Choices) == 0 {
		return Response{}, ErrEmptyReply
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return Response{}, ErrEmptyReply
	}

	return Response{
		Content: content,
		Model:   resp.Model,
		Usage: TokenUsage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		Duration: time.Since(start),
	}, nil
}
