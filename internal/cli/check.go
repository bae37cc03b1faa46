package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/sketchdiag/internal/logging"
	"github.com/yaklabco/sketchdiag/pkg/analysis"
	"github.com/yaklabco/sketchdiag/pkg/config"
	"github.com/yaklabco/sketchdiag/pkg/reporter"
	"github.com/yaklabco/sketchdiag/pkg/runner"
)

type checkFlags struct {
	format         string
	ignore         []string
	libraries      []string
	modeDir        string
	strict         bool
	noContext      bool
	noSummary      bool
	compact        bool
	followSymlinks bool
	width          int
	breakdown      bool
	sortBy         string
}

func newCheckCommand() *cobra.Command {
	var cfg config.Config
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Check sketches for syntax and semantic problems",
		Long:  checkLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, &cfg, flags)
		},
	}

	addCheckFlags(cmd, &cfg, flags)

	return cmd
}

const checkLongDescription = `Run one preprocessing pass over each sketch and report its problems.

A sketch is a folder holding a main tab named after the folder, such as
Blink/Blink.pde. Paths may name sketch folders, tabs, or directories
that contain sketches; by default the current directory is searched.

Examples:
  sketchdiag check                        # Check sketches under the current directory
  sketchdiag check ~/sketchbook           # Check a whole sketchbook
  sketchdiag check Blink/Blink.pde        # Check the sketch a tab belongs to
  sketchdiag check --format json          # Output as JSON for tooling
  sketchdiag check --strict               # Fail on warnings too
  sketchdiag check --breakdown --sort severity  # Totals per origin and per tab`

func runCheck(cmd *cobra.Command, args []string, cfg *config.Config, flags *checkFlags) error {
	sortBy := analysis.SortField(flags.sortBy)
	if !sortBy.IsValid() {
		return fmt.Errorf("invalid sort %q: must be count, alpha, or severity", flags.sortBy)
	}

	// Only set values that were explicitly provided via CLI flags.
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	cfg.Ignore = flags.ignore
	cfg.Sketchbook.Libraries = flags.libraries
	cfg.Mode.Dir = flags.modeDir

	s, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}
	logger := s.logger

	runOpts := runner.Options{
		Paths:          args,
		WorkingDir:     s.workDir,
		ExcludeGlobs:   s.cfg.Ignore,
		FollowSymlinks: flags.followSymlinks,
		Jobs:           s.cfg.Jobs,
	}

	logger.Debug("starting check run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := s.runner.Run(s.ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("check run failed"), err)
	}

	logger.Debug("check run finished",
		logging.FieldSketchesChecked, result.Stats.SketchesChecked,
		logging.FieldSketchesWithIssues, result.Stats.SketchesWithIssues,
		logging.FieldProblemsTotal, result.Stats.ProblemsTotal,
	)

	format, err := reporter.ParseFormat(string(s.cfg.Format))
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       s.colorMode(),
		ShowContext: !flags.noContext,
		ShowSummary: !flags.noSummary,
		Width:       flags.width,
		Compact:     flags.compact,
		Breakdown:   flags.breakdown,
		SortBy:      sortBy,
		WorkingDir:  s.workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(s.ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	if code := ExitCodeFromResult(result, flags.strict); code != ExitSuccess {
		return &issuesError{code: code}
	}

	return nil
}

func addCheckFlags(cmd *cobra.Command, cfg *config.Config, flags *checkFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of sketches checked in parallel (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns of folders to skip")
	cmd.Flags().StringSliceVar(&flags.libraries, "libraries", nil, "contributed library folders")
	cmd.Flags().StringVar(&flags.modeDir, "mode", "", "editor mode directory holding the mode descriptor")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as errors for exit code")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.noSummary, "no-summary", false, "omit the summary line")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().IntVar(&flags.width, "width", 0, "wrap text output at this width (0 = terminal width)")
	cmd.Flags().BoolVar(&flags.breakdown, "breakdown", false, "add problem totals per origin and per tab")
	cmd.Flags().StringVar(&flags.sortBy, "sort", string(analysis.SortByCount), "breakdown order: count, alpha, severity")
}
