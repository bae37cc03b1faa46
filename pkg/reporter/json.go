package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/sketchdiag/pkg/analysis"
	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/runner"
)

// jsonVersion is bumped when the document shape changes.
const jsonVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version  string             `json:"version"`
	Sketches []JSONSketchResult `json:"sketches"`
	Summary  JSONSummary        `json:"summary"`

	// Breakdown is set when Options.Breakdown is on.
	Breakdown *analysis.Report `json:"breakdown,omitempty"`
}

// JSONSketchResult represents a single sketch's results.
type JSONSketchResult struct {
	Name     string        `json:"name"`
	Dir      string        `json:"dir"`
	Tabs     []string      `json:"tabs,omitempty"`
	Problems []JSONProblem `json:"problems"`
	Error    string        `json:"error,omitempty"`
}

// JSONProblem represents a single problem. Lines are 1-based and columns
// are 0-based rune offsets, as in check.Problem.
type JSONProblem struct {
	Path        string         `json:"path"`
	Tab         int            `json:"tab"`
	Line        int            `json:"line"`
	StartColumn int            `json:"startColumn"`
	EndColumn   int            `json:"endColumn"`
	Severity    check.Severity `json:"severity"`
	Origin      check.Origin   `json:"origin"`
	Message     string         `json:"message"`
	RawMessage  string         `json:"rawMessage,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	SketchesChecked    int `json:"sketchesChecked"`
	SketchesWithIssues int `json:"sketchesWithIssues"`
	SketchesErrored    int `json:"sketchesErrored"`
	TotalProblems      int `json:"totalProblems"`
	Errors             int `json:"errors"`
	Warnings           int `json:"warnings"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.TotalProblems, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version:  jsonVersion,
		Sketches: make([]JSONSketchResult, 0),
	}

	if result == nil {
		return output
	}

	for _, sk := range result.Sketches {
		entry := JSONSketchResult{
			Name:     sk.Name,
			Dir:      displayPath(sk.Dir, r.opts.WorkingDir),
			Problems: make([]JSONProblem, 0),
		}
		for _, path := range sk.TabPaths {
			entry.Tabs = append(entry.Tabs, displayPath(path, r.opts.WorkingDir))
		}

		if sk.Error != nil {
			entry.Error = sk.Error.Error()
			output.Summary.SketchesErrored++
		}

		for _, p := range sk.Problems() {
			entry.Problems = append(entry.Problems, JSONProblem{
				Path:        displayPath(sk.TabPath(p.Tab), r.opts.WorkingDir),
				Tab:         p.Tab,
				Line:        p.Line,
				StartColumn: p.StartColumn,
				EndColumn:   p.EndColumn,
				Severity:    p.Severity,
				Origin:      p.Origin,
				Message:     p.Message,
				RawMessage:  p.RawMessage,
			})
			output.Summary.TotalProblems++
			if p.IsError() {
				output.Summary.Errors++
			} else {
				output.Summary.Warnings++
			}
		}

		if len(entry.Problems) > 0 {
			output.Summary.SketchesWithIssues++
		}
		if sk.Error == nil {
			output.Summary.SketchesChecked++
		}

		output.Sketches = append(output.Sketches, entry)
	}

	if r.opts.Breakdown {
		output.Breakdown = analysis.Analyze(result, breakdownOptions(r.opts))
	}

	return output
}
