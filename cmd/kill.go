package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// CreateKillCmd creates the kill command.
func CreateKillCmd() *cobra.Command {
	var configFile string
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "kill",
		Short: "Kill all processes in the wine prefix",
		Long:  `Runs wineserver -k against the configured prefix, terminating every Windows process running in it.`,
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			_, runner, err := setupRunner(configFile, logJSON)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}

			ctx, cancel := signalContext()
			defer cancel()

			if _, err := runner.Wineserver(ctx, []string{"-k"}); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")
	return cmd
}
