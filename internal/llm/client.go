package llm

import (
	"context"
	"time"
)

const (
	// maxAttempts is the total attempt ceiling per completion call.
	maxAttempts = 3
	// backoffFloor is the wait before the first retry.
	backoffFloor = 4 * time.Second
	// backoffCap bounds the exponential growth.
	backoffCap = 10 * time.Second
	// defaultTemperature keeps review output stable across runs.
	defaultTemperature = 0.2
)

// Client issues completion requests with bounded retry and backoff.
// It holds no state between calls beyond its provider handle.
type Client struct {
	provider Provider

	// wait is replaceable in tests to avoid real sleeps.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient wraps a provider with the retry policy.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider, wait: sleep}
}

// Provider returns the wrapped backend.
func (c *Client) Provider() Provider { return c.provider }

// Complete issues one completion request, retrying transient and
// rate-limit failures up to the attempt ceiling with exponential
// backoff. After the final attempt the last error is returned wrapped
// in a RetryExhaustedError so callers can classify the root cause.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, jsonObject bool) (string, error) {
	req := Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		JSONObject:   jsonObject,
		Temperature:  defaultTemperature,
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := c.provider.Complete(ctx, req)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !retryable(err) {
			return "", err
		}
		if attempt == maxAttempts {
			break
		}
		if err := c.wait(ctx, backoffDelay(attempt)); err != nil {
			return "", err
		}
	}

	return "", &RetryExhaustedError{Attempts: maxAttempts, Err: lastErr}
}

// backoffDelay returns the wait after the given failed attempt:
// the floor doubled per attempt, capped.
func backoffDelay(attempt int) time.Duration {
	d := backoffFloor << uint(attempt-1)
	if d > backoffCap {
		return backoffCap
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
