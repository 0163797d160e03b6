// Package llm provides model backends and the retrying completion
// client used by the review pipeline.
//
// Providers (OpenAI-compatible and Anthropic) map HTTP failures into a
// small error taxonomy: RateLimitError, TransientError, AuthError, and
// plain errors for everything permanent. Client retries retryable
// failures up to three attempts with exponential backoff (4s floor,
// 10s cap) and wraps a final failure in RetryExhaustedError so that
// IsRateLimit can still see the root cause.
package llm
