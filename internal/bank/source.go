// Package bank supplies remote candidate questions to the quiz sampler.
// Sources compose as decorators: a store-backed bank, wrapped with retry,
// optionally fronted by a Redis cache.
package bank

import (
	"context"

	"github.com/abhisek/adaptiq/internal/quiz"
)

// Filters narrow a fetch.
type Filters struct {
	// Subtopics restricts results; empty means any. Untagged questions
	// always match.
	Subtopics []string

	// Difficulty orders results by closeness to the target complexity.
	Difficulty float64

	// Limit caps the number of candidates (0 = unlimited).
	Limit int
}

// Source fetches remote candidates for a topic and grade, in priority
// order. A grade of 0 means any grade.
type Source interface {
	Fetch(ctx context.Context, topic string, grade int, f Filters) ([]quiz.Candidate, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, topic string, grade int, f Filters) ([]quiz.Candidate, error)

func (fn SourceFunc) Fetch(ctx context.Context, topic string, grade int, f Filters) ([]quiz.Candidate, error) {
	return fn(ctx, topic, grade, f)
}
