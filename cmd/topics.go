package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/topics"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List practice topics and their subtopics",
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetInt("grade")

		for _, strand := range topics.AllStrands() {
			var ts []topics.Topic
			for _, t := range topics.ByStrand(strand) {
				if grade == 0 || t.Grade == grade {
					ts = append(ts, t)
				}
			}
			if len(ts) == 0 {
				continue
			}

			fmt.Println(titleStyle.Render(topics.StrandDisplayName(strand)))
			for _, t := range ts {
				fmt.Printf("  %-16s %s %s\n", t.ID, t.Name, dimStyle.Render(fmt.Sprintf("(grade %d)", t.Grade)))
				if len(t.Subtopics) > 0 {
					fmt.Printf("  %-16s %s\n", "", dimStyle.Render(strings.Join(t.Subtopics, ", ")))
				}
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	topicsCmd.Flags().Int("grade", 0, "Only show topics for this grade")
}
