// Package retry runs an operation with exponential backoff, giving up
// early on errors that another attempt cannot fix.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"time"
)

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int

	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64

	// Jitter spreads each delay by ±Jitter (a fraction). Zero disables it.
	Jitter float64

	// RetryableCodes lists the CodedError codes that are retried. Errors
	// without a code are treated as transient.
	RetryableCodes []Code

	// ShouldRetry, when set, replaces code-based classification. Context
	// and schema errors are never retried regardless.
	ShouldRetry func(err error) bool

	// WaitHint, when set and positive, overrides the computed delay
	// (e.g. a server-provided Retry-After).
	WaitHint func(err error) time.Duration

	// OnRetry is called before each wait.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultPolicy returns the policy used for question bank lookups.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialDelay:   1 * time.Second,
		MaxDelay:       10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.2,
		RetryableCodes: DefaultRetryableCodes,
	}
}

// Do calls op until it succeeds, the policy gives up, or ctx is done.
// The last error is returned unchanged so callers can inspect it.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(p.MaxAttempts, 1)

	var lastErr error
	for attempt := range attempts {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		// Final attempt: return without sleeping.
		if attempt == attempts-1 || !p.retryable(err) {
			return zero, err
		}

		wait := p.delay(attempt, err)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

func (p Policy) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if IsSchemaError(err) {
		return false
	}
	if p.ShouldRetry != nil {
		return p.ShouldRetry(err)
	}
	if code, ok := CodeOf(err); ok {
		return slices.Contains(p.RetryableCodes, code)
	}
	return true
}

// Delay returns the un-jittered wait before retry number attempt+1:
// min(InitialDelay * BackoffFactor^attempt, MaxDelay).
func (p Policy) Delay(attempt int) time.Duration {
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 1
	}
	wait := float64(p.InitialDelay) * math.Pow(factor, float64(attempt))
	if p.MaxDelay > 0 && wait > float64(p.MaxDelay) {
		wait = float64(p.MaxDelay)
	}
	return time.Duration(wait)
}

func (p Policy) delay(attempt int, err error) time.Duration {
	if p.WaitHint != nil {
		if hint := p.WaitHint(err); hint > 0 {
			return hint
		}
	}

	wait := float64(p.Delay(attempt))
	if p.Jitter > 0 {
		wait += wait * p.Jitter * (2*rand.Float64() - 1)
	}
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
