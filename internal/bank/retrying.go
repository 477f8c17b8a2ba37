package bank

import (
	"context"
	"time"

	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/quiz"
	"github.com/abhisek/adaptiq/internal/retry"
)

// RetryingSource is a decorator that retries transient fetch failures.
type RetryingSource struct {
	inner  Source
	policy retry.Policy
	log    *logger.Logger
}

// WithRetry wraps src so each Fetch runs under policy. Retries are logged
// at warn level unless the policy already sets OnRetry.
func WithRetry(src Source, policy retry.Policy, log *logger.Logger) Source {
	return &RetryingSource{inner: src, policy: policy, log: logger.OrNop(log)}
}

func (r *RetryingSource) Fetch(ctx context.Context, topic string, grade int, f Filters) ([]quiz.Candidate, error) {
	p := r.policy
	if p.OnRetry == nil {
		p.OnRetry = func(attempt int, wait time.Duration, err error) {
			r.log.Warn("question bank fetch failed, retrying",
				"topic", topic,
				"attempt", attempt,
				"wait", wait.String(),
				"error", err,
			)
		}
	}
	return retry.Do(ctx, p, func(ctx context.Context) ([]quiz.Candidate, error) {
		return r.inner.Fetch(ctx, topic, grade, f)
	})
}
