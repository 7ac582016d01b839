package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danmuck/hostctl/internal/logging"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "hostctl",
	Short: "Manage hosts locally or through their agents",
	Long: `hostctl runs commands, manages files, directories, services and
packages, and reads telemetry on the local host or on remote hosts that run
an agent.

Hosts are listed in a TOML config file (see "hostctl config init").
Without --config, hostctl manages the local host only.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.ConfigureRuntime()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hostctl %s (commit: %s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to hostctl.toml")
	rootCmd.PersistentFlags().String("host", "", "Configured host to manage (default: the only host)")
	rootCmd.PersistentFlags().StringP("output", "o", outputText, "Output format: text, json or yaml")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
