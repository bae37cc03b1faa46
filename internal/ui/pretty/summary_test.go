package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/sketchdiag/internal/ui/pretty"
	"github.com/yaklabco/sketchdiag/pkg/analysis"
	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/preproc"
	"github.com/yaklabco/sketchdiag/pkg/runner"
)

func TestFormatSummary_Basic(t *testing.T) {
	styles := pretty.NewStyles(false)

	stats := runner.Stats{
		SketchesChecked:    10,
		SketchesWithIssues: 3,
		ProblemsTotal:      15,
		Errors:             5,
		Warnings:           10,
	}

	result := styles.FormatSummary(stats)

	assert.Contains(t, result, "Summary")
	assert.Contains(t, result, "Sketches checked:     10")
	assert.Contains(t, result, "Sketches with issues: 3")
	assert.Contains(t, result, "Total problems:       15")
	assert.Contains(t, result, "Errors:             5")
	assert.Contains(t, result, "Warnings:           10")
	assert.Contains(t, result, "Check failed with errors")
}

func TestFormatSummary_Outcomes(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		name  string
		stats runner.Stats
		want  string
	}{
		{"clean", runner.Stats{SketchesChecked: 5}, "Check passed"},
		{"warnings only", runner.Stats{SketchesChecked: 2, ProblemsTotal: 1, Warnings: 1}, "Check completed with warnings"},
		{"unreadable sketch", runner.Stats{SketchesErrored: 1}, "Check failed with errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, styles.FormatSummary(tt.stats), tt.want)
		})
	}
}

func TestFormatSummaryOneLine(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		name  string
		stats runner.Stats
		want  string
	}{
		{
			name:  "no problems",
			stats: runner.Stats{SketchesChecked: 1},
			want:  "No problems found (1 sketch checked)\n",
		},
		{
			name:  "mixed",
			stats: runner.Stats{SketchesChecked: 4, SketchesWithIssues: 2, ProblemsTotal: 5, Errors: 2, Warnings: 3},
			want:  "5 problems (2 errors, 3 warnings) in 2 sketches\n",
		},
		{
			name:  "single error with unreadable sketch",
			stats: runner.Stats{SketchesChecked: 1, SketchesWithIssues: 1, ProblemsTotal: 1, Errors: 1, SketchesErrored: 1},
			want:  "1 problem (1 error) in 1 sketch, 1 could not be checked\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, styles.FormatSummaryOneLine(tt.stats))
		})
	}
}

func TestFormatBreakdown(t *testing.T) {
	styles := pretty.NewStyles(false)

	assert.Empty(t, styles.FormatBreakdown(nil))
	assert.Empty(t, styles.FormatBreakdown(&analysis.Report{}))

	report := analysis.Analyze(runner.NewResult(runner.SketchOutcome{
		Dir:      "/sb/Blink",
		Name:     "Blink",
		TabPaths: []string{"/sb/Blink/Blink.pde"},
		Result: &preproc.Result{Problems: []check.Problem{
			{Severity: check.SeverityError, Origin: check.OriginSyntax},
		}},
	}), analysis.DefaultOptions())

	out := styles.FormatBreakdown(report)
	assert.Contains(t, out, "By origin\n  syntax        1  Blink\n")
	assert.Contains(t, out, "By tab\n     1 /sb/Blink/Blink.pde  syntax\n")
}
