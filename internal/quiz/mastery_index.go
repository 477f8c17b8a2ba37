package quiz

import (
	"github.com/abhisek/adaptiq/internal/complexity"
)

// MasteryEntry accumulates complexity for one signature.
type MasteryEntry struct {
	TotalComplexity float64
	Count           int
}

// MasteryIndex maps a question signature to the learner's accumulated
// struggle on it.
type MasteryIndex map[string]MasteryEntry

// BuildMasteryIndex indexes ranked history by signature. Records without a
// signature fall back to their question ID, which legacy clients filled
// with the signature.
func BuildMasteryIndex(ranked []complexity.ScoredRecord) MasteryIndex {
	idx := make(MasteryIndex)
	for _, r := range ranked {
		sig := r.Signature
		if sig == "" {
			sig = r.QuestionID
		}
		if sig == "" {
			continue
		}
		e := idx[sig]
		e.TotalComplexity += r.ComplexityScore
		e.Count++
		idx[sig] = e
	}
	return idx
}

// Need returns the mean complexity for sig, capped at 1.
func (m MasteryIndex) Need(sig string) (float64, bool) {
	e, ok := m[sig]
	if !ok || e.Count == 0 {
		return 0, false
	}
	return min(1, e.TotalComplexity/float64(e.Count)), true
}
