package llm

import (
	"context"
	"fmt"
	"strings"
)

// Supported provider names.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// NewClient creates a provider client from cfg. An empty API key yields an
// *Error of kind KindAPIKeyMissing.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, NewError(KindAPIKeyMissing, cfg.Provider, nil)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		return newGeminiClient(ctx, cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
