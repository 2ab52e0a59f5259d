package llm

import (
	"errors"
	"fmt"

	"github.com/jannisai/llmsdk/internal/aggregator"
	"github.com/jannisai/llmsdk/internal/executor"
)

// ErrorKind classifies why a request failed.
type ErrorKind string

const (
	ErrRateLimited    ErrorKind = "rate-limited"
	ErrUnauthorized   ErrorKind = "unauthorized"
	ErrServer         ErrorKind = "server"
	ErrAPI            ErrorKind = "api"
	ErrTimeout        ErrorKind = "timeout"
	ErrTransport      ErrorKind = "transport"
	ErrParse          ErrorKind = "parse"
	ErrInvalidModel   ErrorKind = "invalid-model"
	ErrMissingAPIKey  ErrorKind = "missing-api-key"
	ErrStreamConsumed ErrorKind = "stream-consumed"
	ErrConfig         ErrorKind = "config"
)

// Error is the error type every public Client method returns on
// failure. A caller that only cares whether to retry should use
// Retryable rather than switching on Kind directly.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	RetryAfter int
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm: %s: %s", e.Kind, e.Message)
}

// Retryable reports whether retrying the same request might succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case ErrRateLimited, ErrServer, ErrTimeout:
		return true
	default:
		return false
	}
}

// translateError maps an internal executor/aggregator error onto the
// public Error type, so callers never need to import internal packages
// to inspect a failure.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var execErr *executor.Error
	if errors.As(err, &execErr) {
		return &Error{
			Kind:       ErrorKind(execErr.Kind),
			StatusCode: execErr.StatusCode,
			Message:    execErr.Message,
			RetryAfter: execErr.RetryAfter,
		}
	}

	if errors.Is(err, aggregator.ErrStreamConsumed) {
		return &Error{Kind: ErrStreamConsumed, Message: err.Error()}
	}

	return &Error{Kind: ErrParse, Message: err.Error()}
}
