package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/winevat/winevat/internal/version"
)

// CreateVersionCmd creates the version command.
func CreateVersionCmd() *cobra.Command {
	var wineVersion bool
	var configFile string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			if wineVersion {
				_, runner, err := setupRunner(configFile, false)
				if err != nil {
					fmt.Fprintln(os.Stderr, "Error:", err)
					os.Exit(1)
				}
				ctx, cancel := signalContext()
				defer cancel()
				v, err := runner.Version(ctx)
				if err != nil {
					fmt.Fprintln(os.Stderr, "Error:", err)
					os.Exit(1)
				}
				fmt.Println(v)
				return
			}

			info := version.Get()
			fmt.Printf("winevat %s\n", info.Version)
			fmt.Printf("  commit:   %s\n", info.GitCommit)
			fmt.Printf("  built:    %s\n", info.BuildDate)
			fmt.Printf("  go:       %s\n", info.GoVersion)
			fmt.Printf("  platform: %s\n", info.Platform)
		},
	}

	cmd.Flags().BoolVar(&wineVersion, "wine", false, "Print the bundled wine version instead")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	return cmd
}
