package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/sketchdiag/internal/configloader"
	"github.com/yaklabco/sketchdiag/pkg/runner"
	"github.com/yaklabco/sketchdiag/pkg/sketch"
)

// Exit codes for sketchdiag.
const (
	// ExitSuccess indicates successful execution with no issues.
	ExitSuccess = 0

	// ExitProblemErrors indicates a check found errors or could not check a sketch.
	ExitProblemErrors = 1

	// ExitProblemWarnings indicates a check found warnings (when strict mode).
	ExitProblemWarnings = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrIssuesFound is returned when a check finds problems that fail the run.
var ErrIssuesFound = errors.New("problems found")

// issuesError carries the exit code of a failing check.
type issuesError struct {
	code int
}

func (e *issuesError) Error() string { return ErrIssuesFound.Error() }

func (e *issuesError) Is(target error) bool { return target == ErrIssuesFound }

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *runner.Result, strict bool) int {
	if result == nil {
		return ExitSuccess
	}

	if result.HasFailures() {
		return ExitProblemErrors
	}

	if strict && result.Stats.Warnings > 0 {
		return ExitProblemWarnings
	}

	return ExitSuccess
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var issues *issuesError
	if errors.As(err, &issues) {
		return issues.code
	}

	var validation *configloader.ValidationError
	switch {
	case errors.As(err, &validation), errors.Is(err, errLoadConfig):
		return ExitConfigError
	case errors.Is(err, sketch.ErrNotSketch):
		return ExitInvalidUsage
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
