// Package cli provides the Cobra command structure for sketchdiag.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/sketchdiag/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root sketchdiag command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "sketchdiag",
		Short: "Incremental preprocessing and diagnostics for sketches",
		Long: `sketchdiag preprocesses multi-tab sketches into plain Java and reports
syntax and semantic problems against the original tabs.

It runs the same pipeline an editor runs in the background: tabs are
assembled, the sketch dialect is rewritten, the result is parsed, and
bindings are resolved against a classpath built from the editor mode,
the sketch's code folder, and the contributed libraries it imports.
Use check for one-shot runs and watch to re-run on every change.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newClasspathCommand())
	rootCmd.AddCommand(newStagesCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	installHelp(rootCmd)

	return rootCmd
}
