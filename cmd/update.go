package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/winevat/winevat/internal/logging"
	"github.com/winevat/winevat/internal/updater"
)

const updateRepository = "winevat/winevat"

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var checkOnly bool
	var prerelease bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update winevat to the latest release",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			logging.Initialize(logging.Config{Level: "info", Format: "text"})

			u, err := updater.New(updateRepository, prerelease)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}

			ctx, cancel := signalContext()
			defer cancel()

			info, err := u.CheckForUpdate(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			if !info.UpdateAvailable {
				fmt.Printf("winevat %s is up to date\n", info.CurrentVersion)
				return
			}

			fmt.Printf("update available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)
			if checkOnly {
				return
			}

			if err := u.ApplyUpdate(ctx); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			fmt.Printf("updated to %s\n", info.LatestVersion)
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for an update, do not apply it")
	cmd.Flags().BoolVar(&prerelease, "pre", false, "Consider prereleases")
	return cmd
}
