package llm

import (
	"errors"
	"fmt"
)

// RateLimitError reports that the provider rejected the call for quota
// or throughput reasons. It drives the pipeline's cooperative stop.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limited"
	}
	return "rate limited: " + e.Message
}

// TransientError covers connection failures, timeouts, and server-side
// errors that are worth retrying.
type TransientError struct {
	Message string
	Err     error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient provider error: %s: %v", e.Message, e.Err)
	}
	return "transient provider error: " + e.Message
}

func (e *TransientError) Unwrap() error { return e.Err }

// AuthError reports a credential failure. Never retried.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "authentication error: " + e.Message
}

// RetryExhaustedError wraps the final error after the attempt ceiling
// was reached, so callers can still classify the root cause.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }

// IsRateLimit reports whether err was ultimately a rate-limit failure,
// whether raised directly or as the root cause inside a
// RetryExhaustedError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsAuth reports whether err is a credential failure.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// retryable reports whether an attempt that failed with err should be
// retried: rate limits, connection failures, timeouts, and server
// errors. Everything else is permanent for this call.
func retryable(err error) bool {
	var rl *RateLimitError
	var tr *TransientError
	return errors.As(err, &rl) || errors.As(err, &tr)
}
