package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the AI parsing adapter.
type ErrorKind int

// The closed set of adapter failure kinds.
const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindRateLimit
	KindInvalidResponse
	KindAPIKeyMissing
	KindParse
)

// String returns the kind's name.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRateLimit:
		return "rate_limit"
	case KindInvalidResponse:
		return "invalid_response"
	case KindAPIKeyMissing:
		return "api_key_missing"
	case KindParse:
		return "parse"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels for errors.Is checks against an *Error of the matching kind.
var (
	ErrNetwork         = errors.New("network error")
	ErrRateLimit       = errors.New("rate limit exceeded")
	ErrInvalidResponse = errors.New("invalid response")
	ErrAPIKeyMissing   = errors.New("api key missing")
	ErrParse           = errors.New("parse error")
	ErrUnknown         = errors.New("unknown AI error")
)

// Error is a typed failure of the AI parsing adapter.
type Error struct {
	Err     error
	Details string
	Kind    ErrorKind
}

func (e *Error) Error() string {
	msg := e.sentinel().Error()
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindNetwork:
		return ErrNetwork
	case KindRateLimit:
		return ErrRateLimit
	case KindInvalidResponse:
		return ErrInvalidResponse
	case KindAPIKeyMissing:
		return ErrAPIKeyMissing
	case KindParse:
		return ErrParse
	case KindUnknown:
		return ErrUnknown
	default:
		return ErrUnknown
	}
}

// NewError creates an adapter error of the given kind.
func NewError(kind ErrorKind, details string, err error) *Error {
	return &Error{Kind: kind, Details: details, Err: err}
}

func networkError(err error) *Error {
	return NewError(KindNetwork, "", err)
}

func parseError(format string, args ...any) *Error {
	return NewError(KindParse, fmt.Sprintf(format, args...), nil)
}

func invalidResponse(details string, err error) *Error {
	return NewError(KindInvalidResponse, details, err)
}

// KindOf returns the kind of err, or KindUnknown for errors outside the taxonomy.
func KindOf(err error) ErrorKind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a transient network failure.
func IsRetryable(err error) bool {
	var aiErr *Error
	return errors.As(err, &aiErr) && aiErr.Kind == KindNetwork
}
