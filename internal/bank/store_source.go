package bank

import (
	"context"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/abhisek/adaptiq/internal/quiz"
	"github.com/abhisek/adaptiq/internal/retry"
	"github.com/abhisek/adaptiq/internal/store"
)

// StoreSource serves candidates from the local question bank table.
type StoreSource struct {
	repo store.QuestionRepo
}

// NewStoreSource creates a Source backed by repo.
func NewStoreSource(repo store.QuestionRepo) *StoreSource {
	return &StoreSource{repo: repo}
}

func (s *StoreSource) Fetch(ctx context.Context, topic string, grade int, f Filters) ([]quiz.Candidate, error) {
	qs, err := s.repo.Query(ctx, store.QuestionQuery{
		Topic:     topic,
		Grade:     grade,
		Subtopics: f.Subtopics,
	})
	if err != nil {
		return nil, classify(err)
	}

	out := make([]quiz.Candidate, len(qs))
	for i, q := range qs {
		out[i] = candidateFromBank(q)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Difficulty-f.Difficulty) < math.Abs(out[j].Difficulty-f.Difficulty)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func candidateFromBank(q store.BankQuestion) quiz.Candidate {
	return quiz.Candidate{
		ID:            q.ID,
		Topic:         q.Topic,
		Subtopic:      q.Subtopic,
		Question:      q.Question,
		CorrectAnswer: q.CorrectAnswer,
		Options:       slices.Clone(q.Options),
		Explanation:   q.Explanation,
		Hint:          q.Hint,
		Difficulty:    q.Difficulty,
		Grade:         q.Grade,
		Source:        quiz.SourceRemote,
	}
}

// classify tags SQLite contention as retryable; everything else passes
// through for retry.Do's default handling.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "sqlite_busy"):
		return retry.WithCode(retry.CodeUnavailable, err)
	case strings.Contains(msg, "interrupted"):
		return retry.WithCode(retry.CodeAborted, err)
	}
	return err
}
