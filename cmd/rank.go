package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/complexity"
	"github.com/abhisek/adaptiq/internal/history"
	"github.com/abhisek/adaptiq/internal/store"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Show per-topic complexity from answer history",
	Long: `Rank scores every answered question by how hard it was for the learner
(slow and incorrect answers score high) and averages the hardest recent
answers per topic.

With --topic, the individual scored records of that topic are listed too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		top, _ := cmd.Flags().GetInt("records")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		hist, err := s.HistoryRepo().List(commandContext(cmd), store.HistoryQuery{})
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		if len(hist) == 0 {
			fmt.Println("No answer history yet. Import some with `adaptiq history import`.")
			return nil
		}

		ranked := complexity.Rank(hist)
		aggs := complexity.Aggregate(ranked)

		fmt.Println(titleStyle.Render("Topic complexity"))
		fmt.Printf("%-16s  %-22s  %6s  %5s  %s\n", "Topic", "", "Avg", "N", "Last answered")
		fmt.Println(rule(72))
		for _, a := range aggs {
			if topic != "" && a.Topic != topic {
				continue
			}
			fmt.Printf("%-16s  %s  %6.3f  %5d  %s\n",
				a.Topic, bar(a.AvgComplexity, 22), a.AvgComplexity, a.Count, formatTime(a.LastAnsweredAt))
		}

		if topic == "" {
			return nil
		}

		fmt.Println()
		fmt.Println(titleStyle.Render("Hardest answers: " + topic))
		fmt.Printf("%-24s  %-19s  %7s  %9s  %s\n", "Question", "Answered", "Correct", "Time (s)", "Score")
		fmt.Println(rule(80))
		shown := 0
		for _, r := range ranked {
			if r.Topic != topic {
				continue
			}
			if top > 0 && shown >= top {
				break
			}
			shown++
			fmt.Printf("%-24s  %-19s  %7s  %9.1f  %.3f\n",
				truncate(r.QuestionID, 24), formatTime(r.CreatedAt), correctMark(r.AnsweredRecord),
				r.TimeSpentMs/1000, r.ComplexityScore)
		}
		return nil
	},
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func correctMark(r history.AnsweredRecord) string {
	if r.IsCorrect {
		return okStyle.Render("✓")
	}
	return errStyle.Render("✗")
}

func init() {
	rankCmd.Flags().StringP("topic", "t", "", "Only show this topic, with its scored records")
	rankCmd.Flags().IntP("records", "n", 10, "Number of scored records to show with --topic (0 = all)")
}
