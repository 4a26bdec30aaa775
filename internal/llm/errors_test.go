package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesSentinel(t *testing.T) {
	tests := []struct {
		sentinel error
		name     string
		kind     ErrorKind
	}{
		{name: "network", kind: KindNetwork, sentinel: ErrNetwork},
		{name: "rate limit", kind: KindRateLimit, sentinel: ErrRateLimit},
		{name: "invalid response", kind: KindInvalidResponse, sentinel: ErrInvalidResponse},
		{name: "api key missing", kind: KindAPIKeyMissing, sentinel: ErrAPIKeyMissing},
		{name: "parse", kind: KindParse, sentinel: ErrParse},
		{name: "unknown", kind: KindUnknown, sentinel: ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", NewError(tt.kind, "details", nil))
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.kind == KindNetwork, IsRetryable(err))
		})
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewError(KindNetwork, "status 503", cause)

	assert.Equal(t, "network error: status 503: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrRateLimit)
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.False(t, IsRetryable(errors.New("boom")))
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorKind
	}{
		{name: "rate limited", status: 429, want: KindRateLimit},
		{name: "unauthorized", status: 401, want: KindUnknown},
		{name: "forbidden", status: 403, want: KindUnknown},
		{name: "server error", status: 500, want: KindNetwork},
		{name: "overloaded", status: 529, want: KindNetwork},
		{name: "request timeout", status: 408, want: KindNetwork},
		{name: "bad request", status: 400, want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusError(tt.status, "body").Kind)
		})
	}
}
