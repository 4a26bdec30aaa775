package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnthropicClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid config", config: Config{APIKey: "test-key"}},
		{name: "missing API key", config: Config{}, wantErr: true},
		{name: "custom model and settings", config: Config{APIKey: "test-key", Model: "claude-3-5-haiku-latest", Temperature: 0.5, MaxTokens: 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newAnthropicClient(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindAPIKeyMissing, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestAnthropicClientComplete(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "{\"transactions\":[]}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "claude-test"})
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), CompletionRequest{System: "be terse", Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, `{"transactions":[]}`, out)
	assert.Equal(t, "claude-test", captured["model"])
	assert.NotNil(t, captured["system"])
}

func TestAnthropicClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorKind
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, want: KindRateLimit},
		{name: "overloaded", status: http.StatusServiceUnavailable, want: KindNetwork},
		{name: "unauthorized", status: http.StatusUnauthorized, want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"nope"}}`))
			}))
			defer server.Close()

			client, err := newAnthropicClient(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), CompletionRequest{Prompt: "p"})
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}
