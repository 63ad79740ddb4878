package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/winevat/winevat/internal/logging"
	"github.com/winevat/winevat/internal/registry"
)

// CreateRegCmd creates the reg command with query and add subcommands.
func CreateRegCmd() *cobra.Command {
	var configFile string
	var logJSON bool
	var valueType string

	cmd := &cobra.Command{
		Use:   "reg",
		Short: "Read and write registry values in the wine prefix",
	}
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")
	cmd.PersistentFlags().StringVarP(&valueType, "type", "t", "REG_SZ", "Value type (REG_SZ, REG_DWORD, REG_QWORD, REG_BINARY)")

	queryCmd := &cobra.Command{
		Use:   "query <key> <name>",
		Short: "Read a named registry value",
		Args:  cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			client := newRegistryClient(configFile, logJSON)

			ctx, cancel := signalContext()
			defer cancel()

			value, found := client.Query(ctx, args[0], args[1], registry.ValueType(valueType))
			if !found {
				fmt.Fprintln(os.Stderr, "value not found")
				os.Exit(1)
			}
			fmt.Println(value)
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <key> <name> <value>",
		Short: "Create or overwrite a named registry value",
		Args:  cobra.ExactArgs(3),
		Run: func(_ *cobra.Command, args []string) {
			client := newRegistryClient(configFile, logJSON)

			ctx, cancel := signalContext()
			defer cancel()

			if err := client.Add(ctx, args[0], args[1], registry.ValueType(valueType), args[2]); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
		},
	}

	cmd.AddCommand(queryCmd, addCmd)
	return cmd
}

func newRegistryClient(configFile string, logJSON bool) *registry.Client {
	_, runner, err := setupRunner(configFile, logJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	return registry.NewClient(runner, logging.GetLogger("registry"), nil)
}
