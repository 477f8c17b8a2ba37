// Package complexity turns raw answer history into per-item complexity
// scores, per-topic aggregates and the next difficulty to request from
// question generators. Every function is a pure transform of its input.
package complexity

const (
	// TimeWeight is the share of the score contributed by normalized latency.
	TimeWeight = 0.6

	// IncorrectWeight is the share contributed by an incorrect answer.
	IncorrectWeight = 0.4

	// MaxTimeMultiplier caps latency/median before scaling to [0,1].
	// A response at the topic median lands at 1/MaxTimeMultiplier.
	MaxTimeMultiplier = 2.0

	// HistoryWindow is how many top-ranked records per topic feed the
	// topic aggregate.
	HistoryWindow = 20

	// ProgressStep is how far past the learner's current level the
	// planner aims.
	ProgressStep = 0.08

	// MinComplexity and MaxComplexity bound every planned target.
	MinComplexity = 0.15
	MaxComplexity = 0.95

	// NeutralComplexity is used when there is nothing to adapt to.
	NeutralComplexity = 0.5

	// MinLatencyMs is the floor applied to every latency before logs are taken.
	MinLatencyMs = 1.0

	// OutlierStdDevs is the log-space rejection radius.
	OutlierStdDevs = 3.0
)
