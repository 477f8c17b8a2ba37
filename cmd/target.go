package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/complexity"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/abhisek/adaptiq/internal/topics"
)

var targetCmd = &cobra.Command{
	Use:   "target <topic>",
	Short: "Show the complexity the next quiz would target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := args[0]
		if !topics.Exists(topic) {
			return fmt.Errorf("unknown topic %q (see `adaptiq topics`)", topic)
		}

		modeFlag, _ := cmd.Flags().GetString("mode")
		if modeFlag == "" {
			modeFlag = string(cfg.Quiz.Mode)
		}
		mode, err := complexity.ParseMode(modeFlag)
		if err != nil {
			return err
		}

		var lastAsked *float64
		if cmd.Flags().Changed("last") {
			v, _ := cmd.Flags().GetFloat64("last")
			lastAsked = &v
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		hist, err := s.HistoryRepo().List(commandContext(cmd), store.HistoryQuery{})
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}

		target := complexity.NextTarget(complexity.TargetInput{
			History:   hist,
			Topic:     topic,
			Mode:      mode,
			LastAsked: lastAsked,
		})

		if agg, ok := complexity.Find(complexity.PerTopic(hist), topic); ok {
			fmt.Printf("Current:  %s %.3f over %d answers\n", bar(agg.AvgComplexity, 20), agg.AvgComplexity, agg.Count)
		} else {
			fmt.Println(dimStyle.Render("No history for this topic; starting from neutral."))
		}
		fmt.Printf("Target:   %s %.3f\n", bar(target, 20), target)
		return nil
	},
}

func init() {
	targetCmd.Flags().String("mode", "", "Planner mode: adaptive or random (default from ADAPTIQ_MODE)")
	targetCmd.Flags().Float64("last", 0, "Complexity requested last time for this topic")
}
