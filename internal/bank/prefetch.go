package bank

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/adaptiq/internal/quiz"
)

// FetchRequest is one topic to prefetch.
type FetchRequest struct {
	Topic   string
	Grade   int
	Filters Filters
}

// FetchResult holds one topic's candidates or its error.
type FetchResult struct {
	Candidates []quiz.Candidate
	Err        error
}

// Prefetch fetches several topics concurrently, at most limit at a time
// (limit <= 0 means unbounded). Per-topic failures are reported in the
// result map rather than aborting the others; only ctx cancellation is
// returned as an error.
func Prefetch(ctx context.Context, src Source, reqs []FetchRequest, limit int) (map[string]FetchResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	var mu sync.Mutex
	out := make(map[string]FetchResult, len(reqs))

	for _, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cands, err := src.Fetch(gctx, req.Topic, req.Grade, req.Filters)

			mu.Lock()
			out[req.Topic] = FetchResult{Candidates: cands, Err: err}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, ctx.Err()
}
