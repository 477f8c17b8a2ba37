package problemgen

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/quiz"
	"github.com/abhisek/adaptiq/internal/topics"
)

// ErrUnsupported is returned by a Generator that cannot produce a
// question under the given constraints, e.g. a subtopic it has no
// template for.
var ErrUnsupported = errors.New("problemgen: unsupported topic or subtopic")

// Generator produces practice questions.
type Generator interface {
	// Generate produces a single validated question for the given input.
	Generate(ctx context.Context, input GenerateInput) (*Question, error)
}

// TopicGenerator binds a Generator to one topic so it can feed a quiz
// sampler. It remembers what it has produced so later prompts can avoid
// repeats. Safe for concurrent use.
type TopicGenerator struct {
	gen          Generator
	topic        topics.Topic
	maxPrior     int
	recentErrors []string
	log          *logger.Logger

	mu    sync.Mutex
	prior []string
}

// ForTopic adapts gen to quiz.Generator for topic. recentErrors is passed
// through to every request.
func ForTopic(gen Generator, topic topics.Topic, recentErrors []string, log *logger.Logger) *TopicGenerator {
	return &TopicGenerator{
		gen:          gen,
		topic:        topic,
		maxPrior:     DefaultConfig().MaxPriorQuestions,
		recentErrors: recentErrors,
		log:          logger.OrNop(log),
	}
}

var _ quiz.Generator = (*TopicGenerator)(nil)

// Generate implements quiz.Generator. Constraints the generator cannot
// satisfy yield a nil candidate; validation failures are returned as
// errors, which the sampler counts as misses.
func (g *TopicGenerator) Generate(ctx context.Context, difficulty float64, allowedSubtopics []string) (*quiz.Candidate, error) {
	var allowed []string
	for _, s := range allowedSubtopics {
		if g.topic.HasSubtopic(s) {
			allowed = append(allowed, s)
		}
	}
	if len(allowedSubtopics) > 0 && len(allowed) == 0 {
		return nil, nil
	}

	g.mu.Lock()
	prior := slices.Clone(g.prior)
	g.mu.Unlock()

	q, err := g.gen.Generate(ctx, GenerateInput{
		Topic:            g.topic,
		Difficulty:       difficulty,
		AllowedSubtopics: allowed,
		PriorQuestions:   prior,
		RecentErrors:     g.recentErrors,
	})
	if errors.Is(err, ErrUnsupported) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.prior = append(g.prior, q.Text)
	if g.maxPrior > 0 && len(g.prior) > g.maxPrior {
		g.prior = g.prior[len(g.prior)-g.maxPrior:]
	}
	g.mu.Unlock()

	g.log.Debug("question generated", "topic", g.topic.ID, "subtopic", q.Subtopic, "level", q.Level)
	c := q.Candidate(g.topic.Grade)
	return &c, nil
}
