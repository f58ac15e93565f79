package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/mistakecoach/internal/app"
)

// runApp opens the environment and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(cmd.Context(), e.deps())
}
