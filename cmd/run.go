package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/winevat/winevat/internal/cmdline"
	"github.com/winevat/winevat/internal/logging"
	"github.com/winevat/winevat/internal/process"
)

// CreateRunCmd creates the run command.
func CreateRunCmd() *cobra.Command {
	var configFile string
	var logJSON bool
	var extraEnv []string

	cmd := &cobra.Command{
		Use:   "run <command line>",
		Short: "Run a Windows program under wine",
		Long: `Runs a Windows command line under the configured wine distribution. ` +
			`The command line is split with a path-aware tokenizer, so unquoted ` +
			`Windows paths containing spaces are kept as a single argument. ` +
			`Output is streamed to the terminal and mirrored into a per-run log file. ` +
			`The child's exit code becomes the command's exit code.`,
		Args: cobra.MinimumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			_, runner, err := setupRunner(configFile, logJSON)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			logger := logging.GetLogger("run")

			tokens := cmdline.Tokenize(strings.Join(args, " "))
			if len(tokens) == 0 {
				fmt.Fprintln(os.Stderr, "Error: empty command line")
				os.Exit(1)
			}

			env := make(map[string]string, len(extraEnv))
			for _, kv := range extraEnv {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					fmt.Fprintf(os.Stderr, "Error: invalid --env %q, want KEY=VALUE\n", kv)
					os.Exit(1)
				}
				env[k] = v
			}

			ctx, cancel := signalContext()
			defer cancel()

			run, err := runner.RunStreaming(ctx, tokens, env)
			if err != nil {
				logger.Error("Failed to launch wine", "error", err)
				os.Exit(1)
			}
			if run.LogPath != "" {
				logger.Info("Run started", "run_id", run.ID, "pid", run.PID, "log", run.LogPath)
			}

			code := 0
			for ev := range run.Events {
				switch ev.Kind {
				case process.KindStdout:
					fmt.Fprint(os.Stdout, ev.Text)
				case process.KindStderr:
					fmt.Fprint(os.Stderr, ev.Text)
				case process.KindTerminated:
					code = ev.ExitCode
				}
			}
			os.Exit(code)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")
	cmd.Flags().StringArrayVarP(&extraEnv, "env", "e", nil, "Extra environment variable (KEY=VALUE, repeatable)")
	return cmd
}
