package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/topics"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage the question bank",
}

// bankEntry is the JSON shape accepted by `bank add`.
type bankEntry struct {
	Topic         string   `json:"topic"`
	Subtopic      string   `json:"subtopic"`
	Grade         int      `json:"grade"`
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correctAnswer"`
	Options       []string `json:"options"`
	Explanation   string   `json:"explanation"`
	Hint          string   `json:"hint"`
	Difficulty    float64  `json:"difficulty"`
}

func (e bankEntry) validate() error {
	t, err := topics.Get(e.Topic)
	if err != nil {
		return err
	}
	if e.Subtopic != "" && !t.HasSubtopic(e.Subtopic) {
		return fmt.Errorf("topic %q has no subtopic %q", e.Topic, e.Subtopic)
	}
	if strings.TrimSpace(e.Question) == "" || strings.TrimSpace(e.CorrectAnswer) == "" {
		return fmt.Errorf("question and correctAnswer are required")
	}
	if e.Difficulty < 0 || e.Difficulty > 1 {
		return fmt.Errorf("difficulty must be within [0, 1], got %v", e.Difficulty)
	}
	return nil
}

var bankAddCmd = &cobra.Command{
	Use:   "add [file.json]",
	Short: "Add questions to the bank from a JSON file or a generator",
	Long: `Add a JSON array of questions to the bank, e.g.

  [{"topic": "fractions", "subtopic": "compare", "question": "Which is larger: 3/4 or 2/3?",
    "correctAnswer": "3/4", "options": ["3/4", "2/3"], "difficulty": 0.4}]

With --generate N --topic T, N questions are produced by the configured
generator instead. Questions already in the bank are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("generate")
		topic, _ := cmd.Flags().GetString("topic")
		difficulty, _ := cmd.Flags().GetFloat64("difficulty")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := commandContext(cmd)

		var entries []bankEntry
		switch {
		case len(args) == 1:
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := json.Unmarshal(raw, &entries); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
		case n > 0:
			t, err := topics.Get(topic)
			if err != nil {
				return err
			}
			newGen, err := generatorFactory(ctx, cfg.Quiz.Generator, s.EventRepo(), 0)
			if err != nil {
				return err
			}
			if newGen == nil {
				return fmt.Errorf("no generator configured")
			}
			gen := newGen(t, nil)
			for range n {
				c, err := gen.Generate(ctx, difficulty, nil)
				if err != nil {
					log.Warn("generation failed", "topic", topic, "error", err)
					continue
				}
				if c == nil {
					return fmt.Errorf("generator cannot produce questions for %q", topic)
				}
				entries = append(entries, bankEntry{
					Topic: c.Topic, Subtopic: c.Subtopic, Grade: c.Grade,
					Question: c.Question, CorrectAnswer: c.CorrectAnswer, Options: c.Options,
					Explanation: c.Explanation, Hint: c.Hint, Difficulty: c.Difficulty,
				})
			}
		default:
			return fmt.Errorf("give a JSON file or --generate with --topic")
		}

		var added, dup int
		for i, e := range entries {
			if err := e.validate(); err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			if e.Grade == 0 {
				t, _ := topics.Get(e.Topic)
				e.Grade = t.Grade
			}
			_, ok, err := s.QuestionRepo().Add(ctx, store.BankQuestion{
				Topic:         e.Topic,
				Subtopic:      e.Subtopic,
				Grade:         e.Grade,
				Question:      e.Question,
				CorrectAnswer: e.CorrectAnswer,
				Options:       e.Options,
				Explanation:   e.Explanation,
				Hint:          e.Hint,
				Difficulty:    e.Difficulty,
			})
			if err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			if ok {
				added++
			} else {
				dup++
			}
		}

		fmt.Printf("Added %s questions", okStyle.Render(fmt.Sprint(added)))
		if dup > 0 {
			fmt.Printf(", %d already in the bank", dup)
		}
		fmt.Println(".")
		return nil
	},
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bank questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		grade, _ := cmd.Flags().GetInt("grade")
		subtopics, _ := cmd.Flags().GetStringSlice("subtopic")
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := commandContext(cmd)

		qs, err := s.QuestionRepo().Query(ctx, store.QuestionQuery{
			Topic: topic, Grade: grade, Subtopics: subtopics, Limit: limit,
		})
		if err != nil {
			return fmt.Errorf("query bank: %w", err)
		}
		if len(qs) == 0 {
			fmt.Println("The bank has no matching questions.")
			return nil
		}

		fmt.Printf("%-14s  %-16s  %5s  %4s  %-40s  %s\n", "Topic", "Subtopic", "Grade", "Diff", "Question", "Answer")
		fmt.Println(rule(100))
		for _, q := range qs {
			fmt.Printf("%-14s  %-16s  %5d  %4.2f  %-40s  %s\n",
				q.Topic, q.Subtopic, q.Grade, q.Difficulty, truncate(q.Question, 40), q.CorrectAnswer)
		}

		total, err := s.QuestionRepo().Count(ctx, topic)
		if err != nil {
			return fmt.Errorf("count bank: %w", err)
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("\n%d shown, %d in bank", len(qs), total)))
		return nil
	},
}

func init() {
	bankAddCmd.Flags().Int("generate", 0, "Generate this many questions instead of reading a file")
	bankAddCmd.Flags().StringP("topic", "t", "", "Topic to generate for")
	bankAddCmd.Flags().Float64("difficulty", 0.5, "Target complexity for generated questions")

	bankListCmd.Flags().StringP("topic", "t", "", "Only show this topic")
	bankListCmd.Flags().Int("grade", 0, "Only show this grade")
	bankListCmd.Flags().StringSlice("subtopic", nil, "Only show these subtopics")
	bankListCmd.Flags().IntP("limit", "n", 50, "Maximum questions to show (0 = all)")

	bankCmd.AddCommand(bankAddCmd)
	bankCmd.AddCommand(bankListCmd)
}
