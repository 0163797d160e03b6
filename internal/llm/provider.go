package llm

import (
	"context"
	"fmt"
)

// Request is a single completion request.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	// JSONObject hints the provider to emit a JSON-object response.
	JSONObject  bool
	MaxTokens   int
	Temperature float64
}

// Provider is a model backend capable of one completion call.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// New creates a provider by name. Gemini is served through its
// OpenAI-compatible endpoint.
func New(provider, model string) (Provider, error) {
	switch provider {
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(model)
	case "anthropic":
		return NewAnthropic(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
