package quiz

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/complexity"
	"github.com/abhisek/adaptiq/internal/history"
	"github.com/abhisek/adaptiq/internal/logger"
)

// ExitReason tells callers why sampling stopped.
type ExitReason string

const (
	// ExitQuotaReached means the quiz is full.
	ExitQuotaReached ExitReason = "quota-reached"

	// ExitAttemptsExhausted means the attempt budget ran out first.
	ExitAttemptsExhausted ExitReason = "attempts-exhausted"

	// ExitFilteredOut means too many consecutive candidates failed the
	// subtopic restriction; none satisfying it appear to remain.
	ExitFilteredOut ExitReason = "filtered-out"

	// ExitCanceled means the context ended sampling.
	ExitCanceled ExitReason = "canceled"
)

// Request describes one quiz to assemble.
type Request struct {
	Topic string

	// DailyGoal is the number of questions wanted; values below 1 mean 1.
	DailyGoal int

	// History is the learner's full answer history, across all topics.
	History []history.AnsweredRecord

	// Difficulty is passed to the generator, usually from complexity.NextTarget.
	Difficulty float64

	// Remote candidates in priority order. Each is drawn at most once.
	Remote []Candidate

	Generator Generator

	// BankProbability overrides Config.BankProbability when set.
	BankProbability *float64

	// AllowedSubtopicsByTopic restricts eligible subtopics per topic. A
	// topic with no entry (or an empty list) is unrestricted.
	AllowedSubtopicsByTopic map[string][]string
}

// Probability is a helper for Request.BankProbability.
func Probability(p float64) *float64 { return &p }

// Diagnostics counts what happened during sampling so callers can explain
// a short quiz.
type Diagnostics struct {
	Requested        int `json:"requested"`
	Attempts         int `json:"attempts"`
	MaxAttempts      int `json:"max_attempts"`
	RemoteDrawn      int `json:"remote_drawn"`
	Generated        int `json:"generated"`
	GeneratorMisses  int `json:"generator_misses"`
	Filtered         int `json:"filtered"`
	Duplicates       int `json:"duplicates"`
	RejectedByChance int `json:"rejected_by_chance"`
}

// Result is an assembled quiz.
type Result struct {
	Questions   []Candidate `json:"questions"`
	Exit        ExitReason  `json:"exit"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Short reports whether fewer questions than requested were accepted.
func (r *Result) Short() bool {
	return len(r.Questions) < r.Diagnostics.Requested
}

// Sampler assembles quizzes. A Sampler is not safe for concurrent use
// because it owns its random source; create one per goroutine.
type Sampler struct {
	cfg Config
	rng *rand.Rand
	log *logger.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithConfig replaces the default tuning.
func WithConfig(cfg Config) Option {
	return func(s *Sampler) { s.cfg = cfg }
}

// WithLogger sets the logger used for shortfall reports.
func WithLogger(l *logger.Logger) Option {
	return func(s *Sampler) { s.log = logger.OrNop(l) }
}

// NewSampler creates a sampler drawing from rng. A nil rng is seeded
// randomly.
func NewSampler(rng *rand.Rand, opts ...Option) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &Sampler{cfg: DefaultConfig(), rng: rng, log: logger.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewSeededSampler creates a sampler with a deterministic random source.
func NewSeededSampler(seed uint64, opts ...Option) *Sampler {
	return NewSampler(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), opts...)
}

// Generate assembles a quiz for req. It returns a partial result rather
// than an error when the quota cannot be met; the only error is ctx's.
func (s *Sampler) Generate(ctx context.Context, req Request) (*Result, error) {
	n := max(1, req.DailyGoal)
	allowed := req.AllowedSubtopicsByTopic[req.Topic]
	restricted := len(allowed) > 0

	mult := s.cfg.AttemptMultiplier
	if restricted {
		mult = s.cfg.RestrictedAttemptMultiplier
	}

	bankProb := s.cfg.BankProbability
	if req.BankProbability != nil {
		bankProb = *req.BankProbability
	}

	st := &run{
		sampler:    s,
		req:        req,
		allowed:    allowed,
		restricted: restricted,
		bankProb:   bankProb,
		mastery:    BuildMasteryIndex(complexity.Rank(req.History)),
		used:       make(map[string]bool),
		res: &Result{
			Questions:   make([]Candidate, 0, n),
			Diagnostics: Diagnostics{Requested: n, MaxAttempts: n * mult},
		},
	}

	if err := st.loop(ctx); err != nil {
		return st.res, err
	}

	return st.res, nil
}

// run is the per-call sampling state.
type run struct {
	sampler    *Sampler
	req        Request
	allowed    []string
	restricted bool
	bankProb   float64
	mastery    MasteryIndex

	used                map[string]bool
	remoteIdx           int
	consecutiveFiltered int

	res *Result
}

func (st *run) loop(ctx context.Context) error {
	d := &st.res.Diagnostics
	cfg := st.sampler.cfg

	for {
		switch {
		case len(st.res.Questions) >= d.Requested:
			st.res.Exit = ExitQuotaReached
			return nil
		case st.consecutiveFiltered >= cfg.MaxConsecutiveFiltered:
			st.res.Exit = ExitFilteredOut
			return nil
		case d.Attempts >= d.MaxAttempts:
			st.res.Exit = ExitAttemptsExhausted
			return nil
		}

		if err := ctx.Err(); err != nil {
			st.res.Exit = ExitCanceled
			return err
		}

		d.Attempts++

		cand, remote, err := st.draw(ctx)
		if err != nil {
			st.res.Exit = ExitCanceled
			return err
		}
		if cand == nil {
			d.GeneratorMisses++
			continue
		}

		if st.restricted && cand.Subtopic != "" && !slices.Contains(st.allowed, cand.Subtopic) {
			st.consecutiveFiltered++
			d.Filtered++
			continue
		}

		sig := cand.Signature()
		if st.used[sig] {
			d.Duplicates++
			continue
		}

		if !remote && st.sampler.rng.Float64() > st.acceptance(sig, d.Attempts, d.MaxAttempts) {
			d.RejectedByChance++
			continue
		}

		st.accept(*cand, sig, remote)
	}
}

// draw produces the next candidate. A nil candidate without error is a
// soft miss. Only context errors are returned.
func (st *run) draw(ctx context.Context) (*Candidate, bool, error) {
	d := &st.res.Diagnostics

	if st.remoteIdx < len(st.req.Remote) && st.sampler.rng.Float64() < st.bankProb {
		c := st.req.Remote[st.remoteIdx]
		// Advance regardless of outcome so a bad entry is never retried.
		st.remoteIdx++
		d.RemoteDrawn++
		return &c, true, nil
	}

	if st.req.Generator == nil {
		return nil, false, nil
	}

	c, err := st.req.Generator.Generate(ctx, st.req.Difficulty, st.allowed)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, false, err
		}
		st.sampler.log.Debug("generator failed", "topic", st.req.Topic, "error", err)
		return nil, false, nil
	}
	if c == nil || strings.TrimSpace(c.Question) == "" {
		return nil, false, nil
	}
	d.Generated++
	return c, false, nil
}

// acceptance returns the probability of keeping a generated candidate.
func (st *run) acceptance(sig string, attempts, maxAttempts int) float64 {
	cfg := st.sampler.cfg

	p := cfg.NoveltyAcceptance
	if need, ok := st.mastery.Need(sig); ok {
		p = cfg.MasteredAcceptance + (1-cfg.MasteredAcceptance)*need
	}

	if maxAttempts <= 0 || cfg.RelaxStart >= 1 {
		return p
	}
	progress := float64(attempts) / float64(maxAttempts)
	if progress > cfg.RelaxStart {
		relax := (progress - cfg.RelaxStart) / (1 - cfg.RelaxStart)
		p += (1 - p) * min(relax, 1)
	}
	return p
}

func (st *run) accept(c Candidate, sig string, remote bool) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Topic == "" {
		c.Topic = st.req.Topic
	}
	if remote {
		c.Source = SourceRemote
	} else {
		c.Source = SourceGenerated
	}
	if c.Options != nil {
		c.Options = slices.Clone(c.Options)
	}

	st.used[sig] = true
	st.res.Questions = append(st.res.Questions, c)
	st.consecutiveFiltered = 0
}
