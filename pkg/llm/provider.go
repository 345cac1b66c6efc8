package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/randalmurphal/tutorgraph/pkg/config"
)

// FromSettings builds the responder selected by s. Provider responders are
// wrapped with a per-call timeout and Retrying. For the static provider it
// returns fallback, which may be nil.
func FromSettings(s config.LLMSettings, fallback Responder) (Responder, error) {
	var r Responder
	switch s.Provider {
	case config.ProviderStatic, "":
		return fallback, nil
	case config.ProviderAnthropic:
		r = NewAnthropicResponder(s.APIKey, s.Model, s.MaxTokens)
	case config.ProviderOpenAI:
		r = NewOpenAIResponder(s.APIKey, s.Model, s.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}

	if s.Timeout > 0 {
		r = withTimeout(r, s.Timeout)
	}
	cfg := DefaultRetry
	cfg.MaxAttempts = s.MaxRetries + 1
	return NewRetrying(r, cfg), nil
}

func withTimeout(next Responder, d time.Duration) Responder {
	return ResponderFunc(func(ctx context.Context, req Request) (Response, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next.Respond(ctx, req)
	})
}
