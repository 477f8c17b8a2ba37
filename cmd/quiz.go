package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/bank"
	"github.com/abhisek/adaptiq/internal/complexity"
	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/practice"
	"github.com/abhisek/adaptiq/internal/problemgen"
	"github.com/abhisek/adaptiq/internal/quiz"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/topics"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <topic>...",
	Short: "Build a practice quiz for one or more topics",
	Long: `Build a practice quiz per topic. Questions are drawn from the bank and
from the configured generator, biased toward the complexity the learner's
history calls for. With --interactive the quiz is played in the terminal and
answers are recorded to history.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyQuizFlags(cmd); err != nil {
			return err
		}
		subtopics, _ := cmd.Flags().GetStringSlice("subtopic")
		interactive, _ := cmd.Flags().GetBool("interactive")
		asJSON, _ := cmd.Flags().GetBool("json")
		if interactive && asJSON {
			return fmt.Errorf("--interactive and --json are mutually exclusive")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := commandContext(cmd)

		src, closeSrc, err := bankSource(ctx, s)
		if err != nil {
			return err
		}
		defer closeSrc()

		newGen, err := generatorFactory(ctx, cfg.Quiz.Generator, s.EventRepo(), cfg.Quiz.Seed)
		if err != nil {
			return err
		}

		opts := practice.DefaultOptions()
		opts.Sampler.BankProbability = cfg.Bank.Probability
		opts.BankLimit = cfg.Bank.Limit
		opts.Grade = cfg.Quiz.Grade
		opts.Mode = cfg.Quiz.Mode
		opts.Seed = cfg.Quiz.Seed
		svc := practice.New(s.HistoryRepo(), src, newGen, opts, log)

		reqs := make([]practice.Request, len(args))
		for i, topic := range args {
			reqs[i] = practice.Request{
				Topic:     topic,
				DailyGoal: cfg.Quiz.DailyGoal,
				Subtopics: subtopics,
				Grade:     cfg.Quiz.Grade,
			}
		}

		var quizzes []*practice.Quiz
		if len(reqs) == 1 {
			q, err := svc.Build(ctx, reqs[0])
			if err != nil {
				return err
			}
			quizzes = []*practice.Quiz{q}
		} else {
			quizzes, err = svc.BuildMany(ctx, reqs)
			if err != nil {
				return err
			}
		}

		switch {
		case asJSON:
			return writeQuizzesJSON(os.Stdout, quizzes)
		case interactive:
			return runPlay(ctx, svc, quizzes, os.Stdout)
		default:
			for _, q := range quizzes {
				printQuiz(os.Stdout, q)
			}
			return nil
		}
	},
}

// applyQuizFlags folds explicitly set flags over the loaded config.
func applyQuizFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("goal") {
		cfg.Quiz.DailyGoal, _ = f.GetInt("goal")
	}
	if f.Changed("grade") {
		cfg.Quiz.Grade, _ = f.GetInt("grade")
	}
	if f.Changed("seed") {
		cfg.Quiz.Seed, _ = f.GetUint64("seed")
	}
	if f.Changed("generator") {
		cfg.Quiz.Generator, _ = f.GetString("generator")
	}
	if f.Changed("bank-probability") {
		cfg.Bank.Probability, _ = f.GetFloat64("bank-probability")
	}
	if f.Changed("mode") {
		s, _ := f.GetString("mode")
		m, err := complexity.ParseMode(s)
		if err != nil {
			return err
		}
		cfg.Quiz.Mode = m
	}
	return cfg.Validate()
}

// bankSource builds the bank source chain: the local store, retried, and
// cached in Redis when an address is configured.
func bankSource(ctx context.Context, s *store.Store) (bank.Source, func(), error) {
	var src bank.Source = bank.NewStoreSource(s.QuestionRepo())
	src = bank.WithRetry(src, cfg.Bank.Retry, log)

	if cfg.Redis.Addr == "" {
		return src, func() {}, nil
	}
	cache := bank.NewRedisCache(bank.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := cache.Ping(ctx); err != nil {
		log.Warn("redis unavailable, bank cache disabled", "addr", cfg.Redis.Addr, "error", err)
		cache.Close()
		return src, func() {}, nil
	}
	return bank.WithCache(src, cache, cfg.Redis.TTL, log), func() { cache.Close() }, nil
}

// generatorFactory resolves the configured generator. A nil factory means
// quizzes are drawn from the bank alone.
func generatorFactory(ctx context.Context, name string, events store.EventRepo, seed uint64) (practice.GeneratorFactory, error) {
	var gen problemgen.Generator
	switch name {
	case config.GeneratorNone:
		return nil, nil
	case config.GeneratorArithmetic:
		gen = newArithmetic(seed)
	case config.GeneratorLLM:
		p, err := llm.NewProvider(ctx, cfg.LLM, events, log)
		if err != nil {
			return nil, fmt.Errorf("init llm provider: %w", err)
		}
		gen = problemgen.New(p, problemgen.DefaultConfig())
	case config.GeneratorAuto:
		gen = newArithmetic(seed)
		llmCfg := cfg.LLM
		if llmCfg.Validate() != nil {
			discovered, ok := llm.DiscoverConfig()
			if !ok {
				log.Debug("no llm provider configured, using arithmetic generator")
				break
			}
			llmCfg = discovered
		}
		p, err := llm.NewProvider(ctx, llmCfg, events, log)
		if err != nil {
			log.Warn("llm provider unavailable, using arithmetic generator", "error", err)
			break
		}
		gen = problemgen.New(p, problemgen.DefaultConfig())
	default:
		return nil, fmt.Errorf("unknown generator %q", name)
	}

	return func(t topics.Topic, recentErrors []string) quiz.Generator {
		return problemgen.ForTopic(gen, t, recentErrors, log)
	}, nil
}

func newArithmetic(seed uint64) *problemgen.ArithmeticGenerator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return problemgen.NewArithmetic(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func printQuiz(w io.Writer, q *practice.Quiz) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s  target %.2f", q.Topic, q.Target)))
	fmt.Fprintln(w, rule(60))
	for i, c := range q.Questions {
		fmt.Fprintf(w, "%2d. %s  %s\n", i+1, c.Question,
			dimStyle.Render(fmt.Sprintf("[%s %.2f %s]", c.Source, c.Difficulty, c.Subtopic)))
		for j, o := range c.Options {
			fmt.Fprintf(w, "      %c) %s\n", 'a'+j, o)
		}
	}
	printExit(w, q)
}

func printExit(w io.Writer, q *practice.Quiz) {
	d := q.Diagnostics
	status := okStyle.Render(string(q.Exit))
	if q.Short() {
		status = warnStyle.Render(string(q.Exit))
	}
	fmt.Fprintf(w, "\n%s  %d/%d questions, %d attempts\n", status, len(q.Questions), d.Requested, d.Attempts)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf(
		"bank %d, generated %d, generator misses %d, filtered %d, duplicates %d, rejected %d",
		d.RemoteDrawn, d.Generated, d.GeneratorMisses, d.Filtered, d.Duplicates, d.RejectedByChance)))
	if q.BankErr != nil {
		fmt.Fprintln(w, warnStyle.Render("bank unavailable: "+q.BankErr.Error()))
	}
	fmt.Fprintln(w)
}

type quizJSON struct {
	ID      string  `json:"id"`
	Topic   string  `json:"topic"`
	Target  float64 `json:"target"`
	BankErr string  `json:"bank_error,omitempty"`
	*quiz.Result
}

func writeQuizzesJSON(w io.Writer, quizzes []*practice.Quiz) error {
	out := make([]quizJSON, len(quizzes))
	for i, q := range quizzes {
		out[i] = quizJSON{ID: q.ID, Topic: q.Topic, Target: q.Target, Result: q.Result}
		if q.BankErr != nil {
			out[i].BankErr = q.BankErr.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	quizCmd.Flags().IntP("goal", "g", 0, "Questions per quiz (default from ADAPTIQ_DAILY_GOAL)")
	quizCmd.Flags().StringSliceP("subtopic", "s", nil, "Restrict questions to these subtopics")
	quizCmd.Flags().Int("grade", 0, "Grade filter for bank questions (0 = topic grade)")
	quizCmd.Flags().Uint64("seed", 0, "Random seed for reproducible quizzes (0 = random)")
	quizCmd.Flags().String("generator", "", "Question generator: auto, arithmetic, llm, none")
	quizCmd.Flags().Float64("bank-probability", 0, "Chance of drawing from the bank before generating")
	quizCmd.Flags().String("mode", "", "Target mode: adaptive or random")
	quizCmd.Flags().BoolP("interactive", "i", false, "Play the quiz and record answers")
	quizCmd.Flags().Bool("json", false, "Print quizzes as JSON")
}
