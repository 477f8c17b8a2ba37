package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/history"
	"github.com/abhisek/adaptiq/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Import and inspect answer history",
}

var historyImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import answer history from a JSON export",
	Long: `Import a JSON array of answered questions. Older export shapes are
accepted: "correct" or "isCorrect", "timeSpent" or "timeSpentMs", and
"createdAt", "timestamp" or "date" (RFC 3339 strings or epoch millis).
Records missing a correctness flag or topic are skipped. Records without
an id get one derived from their content and position, so importing the
same file twice adds nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := history.Decode(f)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		inserted, err := s.HistoryRepo().Append(commandContext(cmd), res.Records...)
		if err != nil {
			return fmt.Errorf("store history: %w", err)
		}

		fmt.Printf("Imported %s of %d records", okStyle.Render(fmt.Sprint(inserted)), len(res.Records))
		if dup := len(res.Records) - inserted; dup > 0 {
			fmt.Printf(", %d already present", dup)
		}
		if res.Skipped > 0 {
			fmt.Printf(", %s", warnStyle.Render(fmt.Sprintf("%d skipped as incomplete", res.Skipped)))
		}
		fmt.Println(".")
		return nil
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		q := store.HistoryQuery{Topic: topic, Limit: limit}
		if since > 0 {
			q.Since = time.Now().Add(-since)
		}
		recs, err := s.HistoryRepo().List(commandContext(cmd), q)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println("No answers found.")
			return nil
		}

		fmt.Printf("%-19s  %-16s  %-16s  %-24s  %7s  %8s\n",
			"Answered", "Topic", "Subtopic", "Question", "Correct", "Time (s)")
		fmt.Println(rule(100))
		for _, r := range recs {
			fmt.Printf("%-19s  %-16s  %-16s  %-24s  %7s  %8.1f\n",
				formatTime(r.CreatedAt), r.Topic, r.Subtopic, truncate(r.QuestionID, 24),
				correctMark(r), r.TimeSpentMs/1000)
		}

		topicsSeen, err := s.HistoryRepo().Topics(commandContext(cmd))
		if err == nil && topic == "" {
			fmt.Println(dimStyle.Render(fmt.Sprintf("\n%d topics with history", len(topicsSeen))))
		}
		return nil
	},
}

func init() {
	historyListCmd.Flags().StringP("topic", "t", "", "Only show this topic")
	historyListCmd.Flags().IntP("limit", "n", 20, "Number of most recent answers to show (0 = all)")
	historyListCmd.Flags().Duration("since", 0, "Only show answers newer than this (e.g. 72h)")

	historyCmd.AddCommand(historyImportCmd)
	historyCmd.AddCommand(historyListCmd)
}
