package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently analyzed mistakes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		entries := e.learner.History()
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Println("No mistakes analyzed yet.")
			return nil
		}

		fmt.Printf("%-12s  %-17s  %-18s  %s\n", "Date", "Subject", "Mode", "Misconception")
		fmt.Println(strings.Repeat("─", 80))
		for _, en := range entries {
			tag := ""
			if en.Analysis != nil {
				tag = en.Analysis.MisconceptionTag
			}
			fmt.Printf("%-12s  %-17s  %-18s  %s\n",
				en.Time().Format("Jan 02 15:04"),
				truncate(string(en.Category), 17),
				en.LearningMode,
				tag,
			)
			if q := strings.TrimSpace(en.Question); q != "" {
				fmt.Printf("%14s%s\n", "", truncate(strings.ReplaceAll(q, "\n", " "), 64))
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 0, "Number of entries to show (default all)")
	historyCmd.Flags().Bool("json", false, "Print entries as JSON")
}
