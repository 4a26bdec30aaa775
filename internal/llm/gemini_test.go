package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want ErrorKind
	}{
		{name: "quota exhausted", err: status.Error(codes.ResourceExhausted, "quota"), want: KindRateLimit},
		{name: "unavailable", err: status.Error(codes.Unavailable, "down"), want: KindNetwork},
		{name: "deadline", err: status.Error(codes.DeadlineExceeded, "slow"), want: KindNetwork},
		{name: "unauthenticated", err: status.Error(codes.Unauthenticated, "bad key"), want: KindUnknown},
		{name: "invalid argument", err: status.Error(codes.InvalidArgument, "bad"), want: KindUnknown},
		{name: "rest rate limit", err: &googleapi.Error{Code: 429}, want: KindRateLimit},
		{name: "rest server error", err: &googleapi.Error{Code: 500}, want: KindNetwork},
		{name: "plain transport error", err: errors.New("dial tcp: connection refused"), want: KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(classifyGeminiError(context.Background(), tt.err)))
		})
	}
}

func TestClassifyGeminiErrorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := classifyGeminiError(ctx, status.Error(codes.Unavailable, "down"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassifyGeminiErrorLocalDeadline(t *testing.T) {
	err := classifyGeminiError(context.Background(), context.DeadlineExceeded)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.True(t, IsRetryable(err))
}

func TestGeminiClientTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{name: "configured", timeout: 5 * time.Second, want: 5 * time.Second},
		{name: "default", want: defaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newGeminiClient(context.Background(), Config{APIKey: "k", Timeout: tt.timeout})
			require.NoError(t, err)
			t.Cleanup(func() { _ = client.Close() })

			assert.Equal(t, tt.want, client.timeout)
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	for _, provider := range []string{ProviderGemini, ProviderAnthropic, ProviderOpenAI} {
		_, err := NewClient(context.Background(), Config{Provider: provider})
		assert.ErrorIs(t, err, ErrAPIKeyMissing, provider)
	}

	_, err := NewClient(context.Background(), Config{Provider: "bogus", APIKey: "k"})
	assert.Error(t, err)
}
