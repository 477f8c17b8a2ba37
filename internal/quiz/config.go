package quiz

// Config holds the sampler's tuning constants.
type Config struct {
	// BankProbability is the default chance of drawing the next remote
	// candidate instead of generating one.
	BankProbability float64

	// AttemptMultiplier and RestrictedAttemptMultiplier scale the attempt
	// budget per requested question; restricted eligibility needs more
	// probing to fill a quota.
	AttemptMultiplier           int
	RestrictedAttemptMultiplier int

	// MaxConsecutiveFiltered ends sampling after this many back-to-back
	// subtopic rejections.
	MaxConsecutiveFiltered int

	// MasteredAcceptance is the acceptance floor for a generated question
	// the learner has fully mastered; struggled-with material scales up
	// to 1.
	MasteredAcceptance float64

	// NoveltyAcceptance applies to generated questions never seen before.
	NoveltyAcceptance float64

	// RelaxStart is the fraction of the attempt budget after which
	// acceptance ramps linearly toward 1.
	RelaxStart float64
}

// DefaultConfig returns the standard sampler settings.
func DefaultConfig() Config {
	return Config{
		BankProbability:             0.7,
		AttemptMultiplier:           10,
		RestrictedAttemptMultiplier: 30,
		MaxConsecutiveFiltered:      50,
		MasteredAcceptance:          0.1,
		NoveltyAcceptance:           0.7,
		RelaxStart:                  0.3,
	}
}
