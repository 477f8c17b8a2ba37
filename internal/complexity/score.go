package complexity

import (
	"sort"

	"github.com/abhisek/adaptiq/internal/history"
	"github.com/abhisek/adaptiq/internal/stats"
)

// ScoredRecord is an answered record with its complexity score in [0,1].
type ScoredRecord struct {
	history.AnsweredRecord
	ComplexityScore float64
}

// Score blends a normalized time component with correctness.
func Score(timeComponent float64, correct bool) float64 {
	incorrect := 0.0
	if !correct {
		incorrect = 1.0
	}
	return stats.Clamp01(TimeWeight*stats.Clamp01(timeComponent) + IncorrectWeight*incorrect)
}

// Rank scores every record and orders them by score descending, most
// recent first among equal scores. Nil input yields an empty slice.
func Rank(records []history.AnsweredRecord) []ScoredRecord {
	times := normalizeAt(records)

	scored := make([]ScoredRecord, 0, len(records))
	for i, r := range records {
		scored = append(scored, ScoredRecord{
			AnsweredRecord:  r,
			ComplexityScore: Score(times[i], r.IsCorrect),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].ComplexityScore != scored[j].ComplexityScore {
			return scored[i].ComplexityScore > scored[j].ComplexityScore
		}
		return scored[i].CreatedAt.After(scored[j].CreatedAt)
	})

	return scored
}
