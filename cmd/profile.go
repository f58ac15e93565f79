package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the learner profile and progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		st := e.learner
		p := st.Profile()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		}

		name := p.UserName
		if name == "" {
			name = "Learner"
		}
		fmt.Printf("%s's learning journey\n", name)
		fmt.Println(strings.Repeat("─", 48))
		if p.AgeGroup != "" {
			fmt.Printf("Age group:          %s\n", p.AgeGroup)
		}
		fmt.Printf("Mistakes analyzed:  %d\n", p.TotalDiagnostics)
		fmt.Printf("Concepts:           %d\n", st.ConceptCount())
		fmt.Printf("Streak:             %d day\n", p.Streak)
		fmt.Printf("Joined:             %s\n", time.UnixMilli(p.JoinedDate).Format("Jan 02, 2006"))
		if h := st.History(); len(h) > 0 {
			fmt.Printf("Last session:       %s\n", h[0].Time().Format("Jan 02, 15:04"))
		}

		if top := st.TopMisconceptions(5); len(top) > 0 {
			fmt.Println()
			fmt.Println("Most frequent misconceptions")
			for i, c := range top {
				fmt.Printf("  %d. %-40s %3d×\n", i+1, c.Label, c.Count)
			}
		}
		if shares := st.CategoryShare(); len(shares) > 0 {
			fmt.Println()
			fmt.Println("Subjects")
			for _, s := range shares {
				fmt.Printf("  %-20s %3d%%  (%d)\n", s.Category, s.Percent, s.Count)
			}
		}
		return nil
	},
}

func init() {
	profileCmd.Flags().Bool("json", false, "Print the stored profile as JSON")
}
