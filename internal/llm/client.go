package llm

import (
	"context"
	"time"
)

// Client is a single-shot completion against an AI provider.
// Implementations return *Error values for provider failures.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is one prompt, optionally with an attached image.
type CompletionRequest struct {
	Image  *Image
	System string
	Prompt string
}

// Image is raw image bytes with their MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

// Config holds provider and adapter settings.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	RateLimit   int
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

const (
	defaultMaxTokens = 1024
	defaultTimeout   = 60 * time.Second
)

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}
