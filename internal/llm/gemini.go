package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// geminiClient implements Client using the Gemini API.
type geminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

// newGeminiClient creates a new Gemini API client.
func newGeminiClient(ctx context.Context, cfg Config) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, NewError(KindAPIKeyMissing, ProviderGemini, nil)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiClient{
		client:      client,
		model:       model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.maxTokens()),
		timeout:     cfg.timeout(),
	}, nil
}

// Complete generates content for a single prompt.
func (c *geminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	model.SetMaxOutputTokens(c.maxTokens)
	model.ResponseMIMEType = "application/json"
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data})
	}

	// The SDK has no per-request timeout option. A local deadline is reported
	// as a network failure; only the caller's own cancellation passes through.
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := model.GenerateContent(callCtx, parts...)
	if err != nil {
		return "", classifyGeminiError(ctx, err)
	}

	var text strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		break
	}
	if text.Len() == 0 {
		return "", invalidResponse("empty response from Gemini", nil)
	}

	return text.String(), nil
}

// Close releases the underlying connection.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

func classifyGeminiError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return invalidResponse("response blocked", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		mapped := statusError(apiErr.Code, "")
		mapped.Err = err
		return mapped
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return NewError(KindRateLimit, st.Message(), err)
		case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.Internal:
			return networkError(err)
		case codes.Unauthenticated, codes.PermissionDenied:
			return NewError(KindUnknown, "authentication failed", err)
		default:
			return NewError(KindUnknown, st.Code().String(), err)
		}
	}

	return networkError(err)
}
