package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mistakecoach/internal/store"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "List feedback submitted from the app",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		notes, err := s.EventRepo().QueryFeedback(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query feedback: %w", err)
		}
		if len(notes) == 0 {
			fmt.Println("No feedback yet.")
			return nil
		}
		for _, n := range notes {
			fmt.Printf("%s  %s\n", n.Timestamp.Local().Format("2006-01-02 15:04"), n.LearningMode)
			for _, line := range strings.Split(n.Message, "\n") {
				fmt.Println("  " + line)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	feedbackCmd.Flags().IntP("limit", "n", 20, "Number of notes to show")
}
