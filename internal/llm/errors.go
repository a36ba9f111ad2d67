package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TransientError marks an upstream failure expected to clear on retry
// (rate limit, quota, momentary unavailability, timeout).
type TransientError struct {
	Provider string
	Model    string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s/%s transient failure: %v", e.Provider, e.Model, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError marks an upstream failure that will not clear on retry
// (bad credentials, malformed request, unknown model).
type FatalError struct {
	Provider string
	Model    string
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s/%s fatal failure: %v", e.Provider, e.Model, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// ExhaustedError reports that every configured model variant failed.
// Unwrap surfaces the last underlying cause.
type ExhaustedError struct {
	Variants []string
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all model variants exhausted (%s): %v",
		strings.Join(e.Variants, ", "), e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// IsTransient reports whether err is retryable on the same variant.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsExhausted reports whether err means every variant failed.
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}

// classifyStatus wraps err as transient or fatal based on the HTTP
// status code of an upstream API response.
func classifyStatus(provider, model string, status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests,
		status == http.StatusRequestTimeout,
		status >= 500 && status < 600:
		return &TransientError{Provider: provider, Model: model, Err: err}
	default:
		return &FatalError{Provider: provider, Model: model, Err: err}
	}
}

// classifyNetwork wraps a non-HTTP error. Timeouts, cancellations and
// connection drops are transient; anything else is treated as fatal.
func classifyNetwork(provider, model string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Provider: provider, Model: model, Err: err}
	}
	if isRetryableErrorMessage(err.Error()) {
		return &TransientError{Provider: provider, Model: model, Err: err}
	}
	return &FatalError{Provider: provider, Model: model, Err: err}
}

// isRetryableErrorMessage checks error strings for transient failure
// markers, including "try later" signals embedded in API error bodies.
func isRetryableErrorMessage(msg string) bool {
	s := strings.ToLower(msg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "rate limit") ||
		strings.Contains(s, "rate_limit") ||
		strings.Contains(s, "quota") ||
		strings.Contains(s, "try again") ||
		strings.Contains(s, "overloaded")
}
