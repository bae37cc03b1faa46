package reporter

import (
	"io"
	"os"

	"github.com/yaklabco/sketchdiag/pkg/analysis"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// ShowContext includes the source line and a marker under each problem.
	ShowContext bool

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// Width wraps long text output. 0 means the terminal width when Writer
	// is a terminal, and no wrapping otherwise.
	Width int

	// Compact uses minified JSON.
	Compact bool

	// Breakdown adds per-origin and per-tab totals after the problems.
	Breakdown bool

	// SortBy orders the breakdown views.
	SortBy analysis.SortField

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		Format:      FormatText,
		Color:       "auto",
		ShowContext: true,
		ShowSummary: true,
		SortBy:      analysis.SortByCount,
	}
}
