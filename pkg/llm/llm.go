// Package llm generates tutor replies from a conversation.
//
// Responder is the single contract the tutor depends on. Implementations
// call the Anthropic Messages API, the OpenAI Chat Completions API, or
// return canned text for offline use. Retrying wraps any Responder with
// categorized retries: transient provider failures (rate limits, 5xx,
// timeouts) are retried with exponential backoff, everything else fails
// immediately.
package llm

import (
	"context"
	"time"
)

// Role identifies the message sender.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is one reply generation call.
type Request struct {
	// System is the tutor instruction for the learner's level and language.
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`
	// Model and MaxTokens override the responder's defaults when set.
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// LastUserMessage returns the content of the latest user turn, or "".
func (r Request) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

// Response is a generated reply.
type Response struct {
	Content  string        `json:"content"`
	Model    string        `json:"model,omitempty"`
	Usage    TokenUsage    `json:"usage"`
	Duration time.Duration `json:"duration"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns input plus output tokens.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Responder produces the tutor's next message.
type Responder interface {
	Respond(ctx context.Context, req Request) (Response, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, req Request) (Response, error)

// Respond calls f.
func (f ResponderFunc) Respond(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
