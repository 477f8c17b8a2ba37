package practice

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/complexity"
	"github.com/abhisek/adaptiq/internal/history"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/problemgen"
	"github.com/abhisek/adaptiq/internal/quiz"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/topics"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(fmt.Sprintf("file:practice_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func arithmetic(seed uint64) GeneratorFactory {
	return func(tp topics.Topic, recentErrors []string) quiz.Generator {
		gen := problemgen.NewArithmetic(rand.New(rand.NewPCG(seed, seed)))
		return problemgen.ForTopic(gen, tp, recentErrors, nil)
	}
}

func observed() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func remoteCandidates(topic string, n int) []quiz.Candidate {
	out := make([]quiz.Candidate, n)
	for i := range out {
		out[i] = quiz.Candidate{
			ID:            fmt.Sprintf("bank-%d", i),
			Topic:         topic,
			Question:      fmt.Sprintf("bank question %d", i),
			CorrectAnswer: fmt.Sprint(i),
		}
	}
	return out
}

func TestBuild_GeneratorOnly(t *testing.T) {
	s := openStore(t)
	opts := DefaultOptions()
	opts.Seed = 1
	svc := New(s.HistoryRepo(), nil, arithmetic(1), opts, nil)

	q, err := svc.Build(context.Background(), Request{Topic: "addition", DailyGoal: 5})
	require.NoError(t, err)

	assert.Equal(t, quiz.ExitQuotaReached, q.Exit)
	assert.Len(t, q.Questions, 5)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, complexity.NeutralComplexity, q.Target)

	seen := map[string]bool{}
	for _, c := range q.Questions {
		assert.Equal(t, quiz.SourceGenerated, c.Source)
		assert.Equal(t, "addition", c.Topic)
		assert.False(t, seen[c.Signature()], "duplicate %q", c.Question)
		seen[c.Signature()] = true
	}
}

func TestBuild_BankFirst(t *testing.T) {
	s := openStore(t)
	var got bank.Filters
	src := bank.SourceFunc(func(_ context.Context, topic string, grade int, f bank.Filters) ([]quiz.Candidate, error) {
		assert.Equal(t, "fractions", topic)
		assert.Equal(t, 5, grade)
		got = f
		return remoteCandidates(topic, 3), nil
	})

	opts := DefaultOptions()
	opts.Sampler.BankProbability = 1
	opts.BankLimit = 20
	opts.Grade = 4
	opts.Seed = 7
	svc := New(s.HistoryRepo(), src, nil, opts, nil)

	q, err := svc.Build(context.Background(), Request{
		Topic:     "fractions",
		DailyGoal: 3,
		Grade:     5,
		Subtopics: []string{"compare"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"compare"}, got.Subtopics)
	assert.Equal(t, 20, got.Limit)
	assert.Equal(t, q.Target, got.Difficulty)

	require.Len(t, q.Questions, 3)
	for i, c := range q.Questions {
		assert.Equal(t, fmt.Sprintf("bank question %d", i), c.Question)
		assert.Equal(t, quiz.SourceRemote, c.Source)
	}
	assert.NoError(t, q.BankErr)
}

func TestBuild_BankFailureFallsBackToGenerator(t *testing.T) {
	s := openStore(t)
	log, logs := observed()
	bankErr := errors.New("bank down")
	src := bank.SourceFunc(func(context.Context, string, int, bank.Filters) ([]quiz.Candidate, error) {
		return nil, bankErr
	})

	opts := DefaultOptions()
	opts.Seed = 3
	svc := New(s.HistoryRepo(), src, arithmetic(3), opts, log)

	q, err := svc.Build(context.Background(), Request{Topic: "multiplication", DailyGoal: 4})
	require.NoError(t, err)

	assert.ErrorIs(t, q.BankErr, bankErr)
	assert.Len(t, q.Questions, 4)
	for _, c := range q.Questions {
		assert.Equal(t, quiz.SourceGenerated, c.Source)
	}
	assert.Equal(t, 1, logs.FilterMessage("question bank unavailable, using generated questions only").Len())
}

func TestBuild_ShortQuizIsLogged(t *testing.T) {
	s := openStore(t)
	log, logs := observed()
	svc := New(s.HistoryRepo(), nil, nil, DefaultOptions(), log)

	q, err := svc.Build(context.Background(), Request{Topic: "addition", DailyGoal: 3})
	require.NoError(t, err)

	assert.True(t, q.Short())
	assert.Empty(t, q.Questions)
	assert.Equal(t, quiz.ExitAttemptsExhausted, q.Exit)

	warns := logs.FilterMessage("quiz is short").FilterLevelExact(zapcore.WarnLevel)
	require.Equal(t, 1, warns.Len())
	assert.Equal(t, "addition", warns.All()[0].ContextMap()["topic"])
	assert.Equal(t, 1, logs.FilterMessageSnippet("short").Len(), "shortfall reported once")
}

func TestBuild_UnsupportedSubtopicYieldsShortQuiz(t *testing.T) {
	s := openStore(t)
	svc := New(s.HistoryRepo(), nil, arithmetic(5), DefaultOptions(), nil)

	q, err := svc.Build(context.Background(), Request{
		Topic:     "addition",
		DailyGoal: 2,
		Subtopics: []string{"word-problems"},
	})
	require.NoError(t, err)
	assert.True(t, q.Short())
	assert.Equal(t, q.Diagnostics.Attempts, q.Diagnostics.GeneratorMisses)
}

func TestBuild_InvalidInput(t *testing.T) {
	s := openStore(t)
	svc := New(s.HistoryRepo(), nil, arithmetic(1), DefaultOptions(), nil)
	ctx := context.Background()

	_, err := svc.Build(ctx, Request{Topic: "astronomy", DailyGoal: 1})
	assert.Error(t, err)

	_, err = svc.Build(ctx, Request{Topic: "addition", DailyGoal: 1, Subtopics: []string{"long-division"}})
	assert.Error(t, err)
}

func TestBuild_Deterministic(t *testing.T) {
	s := openStore(t)
	opts := DefaultOptions()
	opts.Seed = 99

	texts := func() []string {
		svc := New(s.HistoryRepo(), nil, arithmetic(99), opts, nil)
		q, err := svc.Build(context.Background(), Request{Topic: "fractions", DailyGoal: 5})
		require.NoError(t, err)
		var out []string
		for _, c := range q.Questions {
			out = append(out, c.Question)
		}
		return out
	}
	assert.Equal(t, texts(), texts())
}

func TestBuild_ContextCanceled(t *testing.T) {
	s := openStore(t)
	svc := New(s.HistoryRepo(), nil, arithmetic(1), DefaultOptions(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Build(ctx, Request{Topic: "addition", DailyGoal: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTarget_FollowsHistory(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	var recs []history.AnsweredRecord
	for i := range 12 {
		recs = append(recs, history.AnsweredRecord{
			QuestionID:  fmt.Sprintf("q%d", i),
			Topic:       "addition",
			IsCorrect:   i%3 != 0,
			TimeSpentMs: float64(2000 + 500*i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	_, err := s.HistoryRepo().Append(ctx, recs...)
	require.NoError(t, err)

	svc := New(s.HistoryRepo(), nil, nil, DefaultOptions(), nil)
	got, err := svc.Target(ctx, "addition", nil)
	require.NoError(t, err)

	stored, err := s.HistoryRepo().List(ctx, store.HistoryQuery{})
	require.NoError(t, err)
	want := complexity.NextTarget(complexity.TargetInput{History: stored, Topic: "addition", Mode: complexity.ModeAdaptive})
	assert.Equal(t, want, got)

	cold, err := svc.Target(ctx, "fractions", nil)
	require.NoError(t, err)
	assert.Equal(t, complexity.NeutralComplexity, cold)
}

func TestRecord_And_RecentErrors(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	svc := New(s.HistoryRepo(), nil, nil, DefaultOptions(), nil)
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	c := quiz.Candidate{ID: "c1", Topic: "addition", Subtopic: "regroup", Question: "What is 9 + 8?", CorrectAnswer: "17"}
	require.NoError(t, svc.Record(ctx, c, false, 4200*time.Millisecond, at))
	require.NoError(t, svc.Record(ctx, quiz.Candidate{ID: "c2", Topic: "addition", Question: "What is 1 + 1?", CorrectAnswer: "2"}, true, time.Second, at.Add(time.Minute)))

	hist, err := s.HistoryRepo().List(ctx, store.HistoryQuery{Topic: "addition"})
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "c1", hist[0].QuestionID)
	assert.Equal(t, "regroup", hist[0].Subtopic)
	assert.Equal(t, c.Signature(), hist[0].Signature)
	assert.Equal(t, 4200.0, hist[0].TimeSpentMs)
	assert.False(t, hist[0].IsCorrect)

	assert.Equal(t, []string{`missed "What is 9 + 8?" (correct answer 17)`}, RecentErrors(hist, "addition", 5))
	assert.Empty(t, RecentErrors(hist, "fractions", 5))

	assert.Error(t, svc.Record(ctx, quiz.Candidate{Question: "orphan"}, true, time.Second, at))
}

func TestRecentErrors_LimitKeepsLatest(t *testing.T) {
	var hist []history.AnsweredRecord
	for i := range 8 {
		hist = append(hist, history.AnsweredRecord{
			Topic:     "addition",
			Signature: quiz.Signature(fmt.Sprintf("q%d", i), "x"),
		})
	}
	got := RecentErrors(hist, "addition", 3)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], `"q5"`)
	assert.Contains(t, got[2], `"q7"`)
}

func TestBuildMany(t *testing.T) {
	s := openStore(t)
	var calls atomic.Int32
	src := bank.SourceFunc(func(_ context.Context, topic string, _ int, _ bank.Filters) ([]quiz.Candidate, error) {
		calls.Add(1)
		if topic == "division" {
			return nil, errors.New("shard offline")
		}
		return remoteCandidates(topic, 2), nil
	})

	opts := DefaultOptions()
	opts.Seed = 11
	opts.Sampler.BankProbability = 1
	svc := New(s.HistoryRepo(), src, arithmetic(11), opts, nil)

	reqs := []Request{
		{Topic: "addition", DailyGoal: 4},
		{Topic: "division", DailyGoal: 3},
		{Topic: "fractions", DailyGoal: 2},
	}
	quizzes, err := svc.BuildMany(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, quizzes, 3)
	assert.Equal(t, int32(3), calls.Load())

	for i, q := range quizzes {
		assert.Equal(t, reqs[i].Topic, q.Topic)
		assert.Len(t, q.Questions, reqs[i].DailyGoal)
	}
	// Bank questions come first when the bank always wins the draw.
	assert.Equal(t, quiz.SourceRemote, quizzes[0].Questions[0].Source)
	assert.Equal(t, quiz.SourceRemote, quizzes[0].Questions[1].Source)
	assert.Equal(t, quiz.SourceGenerated, quizzes[0].Questions[2].Source)

	assert.Error(t, quizzes[1].BankErr)
	for _, c := range quizzes[1].Questions {
		assert.Equal(t, quiz.SourceGenerated, c.Source)
	}
	assert.Equal(t, []string{"bank question 0", "bank question 1"},
		[]string{quizzes[2].Questions[0].Question, quizzes[2].Questions[1].Question})
}

func TestBuildMany_RejectsDuplicateTopics(t *testing.T) {
	s := openStore(t)
	svc := New(s.HistoryRepo(), nil, arithmetic(1), DefaultOptions(), nil)
	_, err := svc.BuildMany(context.Background(), []Request{{Topic: "addition"}, {Topic: "addition"}})
	assert.Error(t, err)
}
