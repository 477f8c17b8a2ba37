package llm

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/adaptiq/internal/retry"
)

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter.
type RetryProvider struct {
	inner  Provider
	policy retry.Policy
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, policy: cfg.Policy()}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	p := r.policy

	// Invalid responses get exactly one retry per call.
	invalidRetried := false
	p.ShouldRetry = func(err error) bool { return shouldRetry(err, &invalidRetried) }
	p.WaitHint = retryAfter

	return retry.Do(ctx, p, func(ctx context.Context) (*Response, error) {
		return r.inner.Generate(ctx, req)
	})
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func shouldRetry(err error, invalidRetried *bool) bool {
	// Truncation and refusals repeat on every attempt.
	var maxTok *ErrMaxTokensExceeded
	var rejected *ErrRejected
	if errors.As(err, &maxTok) || errors.As(err, &rejected) {
		return false
	}

	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}

	// Rate limits, unavailability and network errors are transient.
	return true
}

// retryAfter honors a provider's Retry-After on rate limits.
func retryAfter(err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}
