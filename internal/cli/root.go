// Package cli provides the Cobra command structure for hlbench.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

// NewRootCommand creates the root hlbench command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "hlbench",
		Short: "Replay editing sessions against the highlight overlay",
		Long: `hlbench drives a highlight session the way an editor does: it parses a
document, types bursts of keystrokes while repainting a viewport, and
re-parses between bursts. It reports cache and precompute statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to config file (TOML or YAML)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(newRunCommand(flags))
	rootCmd.AddCommand(newRangesCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hlbench %s (commit %s, built %s)\n", info.Version, info.Commit, info.Date)
		},
	}
}
