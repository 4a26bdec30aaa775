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

func TestNewOpenAIClient(t *testing.T) {
	_, err := newOpenAIClient(Config{})
	require.Error(t, err)
	assert.Equal(t, KindAPIKeyMissing, KindOf(err))

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: "http://localhost:1234/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1234/v1", client.baseURL)
	assert.Equal(t, "gpt-4o-mini", client.model)
	assert.Equal(t, defaultMaxTokens, client.maxTokens)
}

func TestOpenAIClientComplete(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"{\"transactions\":[]}"}}]}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", BaseURL: server.URL + "/v1", Model: "test-model"})
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), CompletionRequest{
		System: "system",
		Prompt: "prompt",
		Image:  &Image{MIMEType: "image/png", Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"transactions":[]}`, out)

	assert.Equal(t, "test-model", captured["model"])
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)

	user, ok := messages[1].(map[string]any)
	require.True(t, ok)
	parts, ok := user["content"].([]any)
	require.True(t, ok, "image requests send content parts")
	require.Len(t, parts, 2)
	imagePart, ok := parts[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "image_url", imagePart["type"])
	assert.Equal(t, map[string]any{"url": "data:image/png;base64,AQID"}, imagePart["image_url"])
}

func TestOpenAIClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   ErrorKind
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":"slow down"}`, want: KindRateLimit},
		{name: "server error", status: http.StatusBadGateway, body: "bad gateway", want: KindNetwork},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, want: KindUnknown},
		{name: "malformed envelope", status: http.StatusOK, body: "not json", want: KindInvalidResponse},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: KindInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = client.Complete(context.Background(), CompletionRequest{Prompt: "p"})
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestOpenAIClientTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}
