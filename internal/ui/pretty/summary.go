package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/sketchdiag/pkg/analysis"
	"github.com/yaklabco/sketchdiag/pkg/runner"
)

const summaryDividerWidth = 40

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "5 problems (2 errors, 3 warnings) in 2 sketches".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	var parts []string

	if stats.ProblemsTotal == 0 {
		parts = append(parts, s.Success.Render("No problems found")+
			s.Dim.Render(fmt.Sprintf(" (%d %s checked)", stats.SketchesChecked,
				plural(stats.SketchesChecked, "sketch", "sketches"))))
	} else {
		var severityParts []string
		if stats.Errors > 0 {
			severityParts = append(severityParts, s.Error.Render(fmt.Sprintf("%d %s", stats.Errors, plural(stats.Errors, "error", "errors"))))
		}
		if stats.Warnings > 0 {
			severityParts = append(severityParts, s.Warning.Render(fmt.Sprintf("%d %s", stats.Warnings, plural(stats.Warnings, "warning", "warnings"))))
		}

		parts = append(parts, fmt.Sprintf("%d %s (%s) in %d %s",
			stats.ProblemsTotal, plural(stats.ProblemsTotal, "problem", "problems"),
			strings.Join(severityParts, ", "),
			stats.SketchesWithIssues, plural(stats.SketchesWithIssues, "sketch", "sketches")))
	}

	if stats.SketchesErrored > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d could not be checked", stats.SketchesErrored)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Sketches checked:     " +
		s.SummaryValue.Render(strconv.Itoa(stats.SketchesChecked)) + "\n")

	if stats.SketchesWithIssues > 0 {
		builder.WriteString("  Sketches with issues: " +
			s.Failure.Render(strconv.Itoa(stats.SketchesWithIssues)) + "\n")
	}
	if stats.SketchesErrored > 0 {
		builder.WriteString("  Sketches not checked: " +
			s.Failure.Render(strconv.Itoa(stats.SketchesErrored)) + "\n")
	}

	builder.WriteString("\n")

	builder.WriteString("  Total problems:       " +
		s.SummaryValue.Render(strconv.Itoa(stats.ProblemsTotal)) + "\n")
	if stats.Errors > 0 {
		builder.WriteString("    Errors:             " + s.Error.Render(strconv.Itoa(stats.Errors)) + "\n")
	}
	if stats.Warnings > 0 {
		builder.WriteString("    Warnings:           " + s.Warning.Render(strconv.Itoa(stats.Warnings)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case stats.Errors > 0 || stats.SketchesErrored > 0:
		builder.WriteString(s.Failure.Render("Check failed with errors"))
	case stats.Warnings > 0:
		builder.WriteString(s.Warning.Render("Check completed with warnings"))
	default:
		builder.WriteString(s.Success.Render("Check passed"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// FormatBreakdown formats the per-origin and per-tab views of a report.
// It returns an empty string when the report has no problems.
func (s *Styles) FormatBreakdown(report *analysis.Report) string {
	if report == nil || !report.Totals.HasProblems() {
		return ""
	}

	var builder strings.Builder

	if len(report.ByOrigin) > 0 {
		builder.WriteString(s.SummaryTitle.Render("By origin"))
		builder.WriteString("\n")
		for _, oa := range report.ByOrigin {
			fmt.Fprintf(&builder, "  %-10s %s  %s\n",
				oa.Origin,
				s.SummaryValue.Render(fmt.Sprintf("%4d", oa.Problems)),
				s.Dim.Render(strings.Join(oa.Sketches, ", ")))
		}
		builder.WriteString("\n")
	}

	if len(report.ByTab) > 0 {
		builder.WriteString(s.SummaryTitle.Render("By tab"))
		builder.WriteString("\n")
		for _, ta := range report.ByTab {
			fmt.Fprintf(&builder, "  %s %s  %s\n",
				s.SummaryValue.Render(fmt.Sprintf("%4d", ta.Problems)),
				s.FilePath.Render(ta.Path),
				s.Dim.Render(strings.Join(ta.Origins, ", ")))
		}
	}

	return builder.String()
}
