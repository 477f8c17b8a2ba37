package complexity

import (
	"fmt"
	"math"

	"github.com/abhisek/adaptiq/internal/history"
	"github.com/abhisek/adaptiq/internal/stats"
)

// Mode selects how the planner picks the next target.
type Mode string

const (
	// ModeAdaptive steps past the learner's current level.
	ModeAdaptive Mode = "adaptive"

	// ModeRandom always asks for neutral difficulty.
	ModeRandom Mode = "random"
)

// ParseMode validates a mode name. Empty means adaptive.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAdaptive:
		return ModeAdaptive, nil
	case ModeRandom:
		return ModeRandom, nil
	}
	return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeAdaptive, ModeRandom)
}

// TargetInput holds the planner's inputs.
type TargetInput struct {
	History []history.AnsweredRecord
	Topic   string
	Mode    Mode

	// LastAsked is the complexity most recently requested for this topic,
	// if any. The next target never falls behind it.
	LastAsked *float64
}

// NextTarget proposes the complexity to request next for in.Topic.
// The result is always within [MinComplexity, MaxComplexity], except for
// random mode and cold starts which return NeutralComplexity.
func NextTarget(in TargetInput) float64 {
	if in.Mode == ModeRandom {
		return NeutralComplexity
	}

	topicHistory := history.FilterTopic(in.History, in.Topic)
	if len(topicHistory) == 0 {
		return NeutralComplexity
	}

	base := NeutralComplexity
	if agg, ok := Find(PerTopic(topicHistory), in.Topic); ok {
		base = agg.AvgComplexity
	}

	target := base + ProgressStep
	if in.LastAsked != nil && !math.IsNaN(*in.LastAsked) {
		target = math.Max(target, *in.LastAsked+ProgressStep)
	}

	return stats.Clamp(target, MinComplexity, MaxComplexity)
}
