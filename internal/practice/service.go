// Package practice wires answer history, the question bank and a question
// generator into the quiz sampler.
package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/complexity"
	"github.com/abhisek/adaptiq/internal/history"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/quiz"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/topics"
)

// maxRecentErrors bounds the mistakes passed to a generator.
const maxRecentErrors = 5

// GeneratorFactory builds the generator for one quiz. recentErrors
// describes the learner's latest mistakes on the topic, oldest first.
type GeneratorFactory func(topic topics.Topic, recentErrors []string) quiz.Generator

// Options tunes a Service.
type Options struct {
	Sampler quiz.Config

	// BankLimit caps the bank questions fetched per quiz.
	BankLimit int

	Grade int
	Mode  complexity.Mode

	// Seed makes quizzes reproducible; zero seeds randomly. BuildMany
	// offsets it per request.
	Seed uint64

	// Parallelism bounds concurrent work in BuildMany (0 = unbounded).
	Parallelism int
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{
		Sampler:     quiz.DefaultConfig(),
		BankLimit:   50,
		Mode:        complexity.ModeAdaptive,
		Parallelism: 4,
	}
}

// Service builds quizzes and records answers.
type Service struct {
	history store.HistoryRepo
	bank    bank.Source
	newGen  GeneratorFactory
	opts    Options
	log     *logger.Logger
}

// New creates a Service. src and newGen may be nil: without a bank every
// question is generated, without a generator only bank questions are used.
func New(hist store.HistoryRepo, src bank.Source, newGen GeneratorFactory, opts Options, log *logger.Logger) *Service {
	return &Service{
		history: hist,
		bank:    src,
		newGen:  newGen,
		opts:    opts,
		log:     logger.OrNop(log),
	}
}

// Request describes one quiz.
type Request struct {
	Topic     string
	DailyGoal int

	// Subtopics restricts eligible questions; empty means any.
	Subtopics []string

	// Grade overrides Options.Grade when non-zero.
	Grade int

	// LastAsked is the complexity previously requested for the topic.
	LastAsked *float64
}

// Quiz is an assembled quiz with the inputs that shaped it.
type Quiz struct {
	ID     string
	Topic  string
	Target float64

	// BankErr is set when the bank failed and the quiz fell back to
	// generated questions.
	BankErr error

	*quiz.Result
}

// Build assembles one quiz.
func (s *Service) Build(ctx context.Context, req Request) (*Quiz, error) {
	if err := topics.ValidateSubtopics(req.Topic, req.Subtopics); err != nil {
		return nil, err
	}
	hist, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	var remote []quiz.Candidate
	var bankErr error
	if s.bank != nil {
		target := s.target(hist, req)
		remote, bankErr = s.bank.Fetch(ctx, req.Topic, s.grade(req), s.filters(req, target))
		if bankErr != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return s.build(ctx, req, hist, remote, bankErr, s.opts.Seed)
}

// BuildMany assembles quizzes for several topics concurrently. Bank
// lookups are prefetched together; results are returned in request order.
// Topics must be distinct. A failure in one request cancels the rest.
func (s *Service) BuildMany(ctx context.Context, reqs []Request) ([]*Quiz, error) {
	seen := make(map[string]bool, len(reqs))
	for _, req := range reqs {
		if seen[req.Topic] {
			return nil, fmt.Errorf("duplicate topic %q", req.Topic)
		}
		seen[req.Topic] = true
		if err := topics.ValidateSubtopics(req.Topic, req.Subtopics); err != nil {
			return nil, err
		}
	}

	hist, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	fetched := map[string]bank.FetchResult{}
	if s.bank != nil {
		freqs := make([]bank.FetchRequest, 0, len(reqs))
		for _, req := range reqs {
			freqs = append(freqs, bank.FetchRequest{
				Topic:   req.Topic,
				Grade:   s.grade(req),
				Filters: s.filters(req, s.target(hist, req)),
			})
		}
		fetched, err = bank.Prefetch(ctx, s.bank, freqs, s.opts.Parallelism)
		if err != nil {
			return nil, err
		}
	}

	out := make([]*Quiz, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	if s.opts.Parallelism > 0 {
		g.SetLimit(s.opts.Parallelism)
	}
	for i, req := range reqs {
		g.Go(func() error {
			var seed uint64
			if s.opts.Seed != 0 {
				seed = s.opts.Seed + uint64(i)
			}
			res := fetched[req.Topic]
			q, err := s.build(gctx, req, hist, res.Candidates, res.Err, seed)
			if err != nil {
				return fmt.Errorf("topic %s: %w", req.Topic, err)
			}
			out[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) build(ctx context.Context, req Request, hist []history.AnsweredRecord, remote []quiz.Candidate, bankErr error, seed uint64) (*Quiz, error) {
	topic, err := topics.Get(req.Topic)
	if err != nil {
		return nil, err
	}
	if err := topics.ValidateSubtopics(req.Topic, req.Subtopics); err != nil {
		return nil, err
	}

	if bankErr != nil {
		s.log.Warn("question bank unavailable, using generated questions only",
			"topic", req.Topic, "error", bankErr)
		remote = nil
	}

	target := s.target(hist, req)

	qreq := quiz.Request{
		Topic:      req.Topic,
		DailyGoal:  req.DailyGoal,
		History:    hist,
		Difficulty: target,
		Remote:     remote,
	}
	if len(req.Subtopics) > 0 {
		qreq.AllowedSubtopicsByTopic = map[string][]string{req.Topic: req.Subtopics}
	}
	if s.newGen != nil {
		qreq.Generator = s.newGen(topic, RecentErrors(hist, req.Topic, maxRecentErrors))
	}

	var sampler *quiz.Sampler
	opts := []quiz.Option{quiz.WithConfig(s.opts.Sampler), quiz.WithLogger(s.log)}
	if seed != 0 {
		sampler = quiz.NewSeededSampler(seed, opts...)
	} else {
		sampler = quiz.NewSampler(nil, opts...)
	}

	res, err := sampler.Generate(ctx, qreq)
	if err != nil {
		return nil, fmt.Errorf("sample quiz: %w", err)
	}

	if res.Short() {
		d := res.Diagnostics
		s.log.Warn("quiz is short",
			"topic", req.Topic,
			"exit", string(res.Exit),
			"accepted", len(res.Questions),
			"requested", d.Requested,
			"attempts", d.Attempts,
			"max_attempts", d.MaxAttempts,
			"filtered", d.Filtered,
			"duplicates", d.Duplicates,
			"generator_misses", d.GeneratorMisses,
		)
	}

	return &Quiz{
		ID:      uuid.NewString(),
		Topic:   req.Topic,
		Target:  target,
		BankErr: bankErr,
		Result:  res,
	}, nil
}

// Target returns the next complexity to request for topic.
func (s *Service) Target(ctx context.Context, topic string, lastAsked *float64) (float64, error) {
	hist, err := s.loadHistory(ctx)
	if err != nil {
		return 0, err
	}
	return s.target(hist, Request{Topic: topic, LastAsked: lastAsked}), nil
}

// Record stores the learner's answer to c.
func (s *Service) Record(ctx context.Context, c quiz.Candidate, correct bool, spent time.Duration, at time.Time) error {
	if c.Topic == "" {
		return errors.New("candidate has no topic")
	}
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.history.Append(ctx, history.AnsweredRecord{
		QuestionID:  id,
		Topic:       c.Topic,
		Subtopic:    c.Subtopic,
		Signature:   c.Signature(),
		IsCorrect:   correct,
		TimeSpentMs: float64(spent.Milliseconds()),
		CreatedAt:   at,
	})
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

// RecentErrors describes up to limit of the latest incorrect answers on
// topic whose question text is known, oldest first.
func RecentErrors(hist []history.AnsweredRecord, topic string, limit int) []string {
	var out []string
	for i := len(hist) - 1; i >= 0 && len(out) < limit; i-- {
		r := hist[i]
		if r.Topic != topic || r.IsCorrect || r.Signature == "" {
			continue
		}
		question, answer, ok := strings.Cut(r.Signature, quiz.SignatureSeparator)
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf("missed %q (correct answer %s)", question, answer))
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (s *Service) loadHistory(ctx context.Context) ([]history.AnsweredRecord, error) {
	hist, err := s.history.List(ctx, store.HistoryQuery{})
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return hist, nil
}

func (s *Service) target(hist []history.AnsweredRecord, req Request) float64 {
	return complexity.NextTarget(complexity.TargetInput{
		History:   hist,
		Topic:     req.Topic,
		Mode:      s.opts.Mode,
		LastAsked: req.LastAsked,
	})
}

func (s *Service) grade(req Request) int {
	if req.Grade != 0 {
		return req.Grade
	}
	return s.opts.Grade
}

func (s *Service) filters(req Request, target float64) bank.Filters {
	return bank.Filters{
		Subtopics:  req.Subtopics,
		Difficulty: target,
		Limit:      s.opts.BankLimit,
	}
}
