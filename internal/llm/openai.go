package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAIClient implements Client for OpenAI-compatible chat completion APIs.
type openAIClient struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, NewError(KindAPIKeyMissing, ProviderOpenAI, nil)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.maxTokens(),
		httpClient: &http.Client{
			Timeout: cfg.timeout(),
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

type openAIMessage struct {
	Content any    `json:"content"`
	Role    string `json:"role"`
}

type openAIContentPart struct {
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIRequest struct {
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	Temperature    float64               `json:"temperature"`
	MaxTokens      int                   `json:"max_tokens"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
}

// Complete sends a chat completion request.
func (c *openAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var userContent any = req.Prompt
	if req.Image != nil {
		dataURL := fmt.Sprintf("data:%s;base64,%s", req.Image.MIMEType, base64.StdEncoding.EncodeToString(req.Image.Data))
		userContent = []openAIContentPart{
			{Type: "text", Text: req.Prompt},
			{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURL}},
		}
	}

	messages := make([]openAIMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: userContent})

	body, err := json.Marshal(openAIRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &openAIResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", networkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", networkError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, string(respBody))
	}

	var response openAIResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", invalidResponse("malformed completion envelope", err)
	}
	if len(response.Choices) == 0 {
		return "", invalidResponse("no completion choices returned", nil)
	}

	return response.Choices[0].Message.Content, nil
}

// statusError maps a non-200 HTTP status to the adapter error taxonomy.
func statusError(status int, body string) *Error {
	details := fmt.Sprintf("status %d", status)
	if body = strings.TrimSpace(body); body != "" {
		details += ": " + truncate(body, 200)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return NewError(KindRateLimit, details, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewError(KindUnknown, "authentication failed: "+details, nil)
	case status >= http.StatusInternalServerError, status == http.StatusRequestTimeout:
		return NewError(KindNetwork, details, nil)
	default:
		return NewError(KindUnknown, details, nil)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
