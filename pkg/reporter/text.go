package reporter

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/yaklabco/sketchdiag/internal/ui/pretty"
	"github.com/yaklabco/sketchdiag/pkg/analysis"
	"github.com/yaklabco/sketchdiag/pkg/runner"
)

// TextReporter formats results as styled terminal output, grouped by sketch.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	width  int
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		width:  outputWidth(opts),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// outputWidth returns opts.Width, or the terminal width when writing to one.
func outputWidth(opts Options) int {
	if opts.Width > 0 {
		return opts.Width
	}
	f, ok := opts.Writer.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Sketches) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No sketches to check."))
		}
		return 0, nil
	}

	var total int

	for _, sk := range result.Sketches {
		if sk.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(displayPath(sk.Dir, r.opts.WorkingDir)),
				r.styles.Error.Render(fmt.Sprintf("error: %v", sk.Error)),
			)
			continue
		}

		problems := sk.Problems()
		if len(problems) == 0 {
			continue
		}

		fmt.Fprintln(r.bw, r.styles.FormatSketchHeader(sk.Name, len(problems)))

		for _, p := range problems {
			var sourceLine string
			if r.opts.ShowContext {
				sourceLine = sk.LineText(p.Tab, p.Line)
			}
			path := displayPath(sk.TabPath(p.Tab), r.opts.WorkingDir)
			fmt.Fprint(r.bw, r.styles.FormatProblemWidth(path, p, r.opts.ShowContext, sourceLine, r.width))
			total++
		}

		// Blank line between sketches
		fmt.Fprintln(r.bw)
	}

	if r.opts.Breakdown {
		fmt.Fprint(r.bw, r.styles.FormatBreakdown(analysis.Analyze(result, breakdownOptions(r.opts))))
		if r.opts.ShowSummary {
			fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))
		}
		return total, nil
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return total, nil
}
