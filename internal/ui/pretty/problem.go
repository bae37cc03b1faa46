package pretty

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/yaklabco/sketchdiag/pkg/check"
)

// tabWidth is how far a tab character advances in source context.
const tabWidth = 4

// minWrapWidth keeps very narrow terminals readable.
const minWrapWidth = 20

// FormatProblem formats a single problem for terminal output. Columns are
// printed 1-based, as editors show them.
func (s *Styles) FormatProblem(path string, p check.Problem, showContext bool, sourceLine string) string {
	return s.FormatProblemWidth(path, p, showContext, sourceLine, 0)
}

// FormatProblemWidth is FormatProblem for a terminal of the given width.
// When the one-line form would overflow, the message moves to indented
// lines wrapped at word boundaries. A width of 0 disables wrapping.
func (s *Styles) FormatProblemWidth(path string, p check.Problem, showContext bool, sourceLine string, width int) string {
	var builder strings.Builder

	location := fmt.Sprintf("%s:%d:%d", path, p.Line, p.StartColumn+1)
	severity := p.Severity.String()
	origin := "(" + p.Origin.String() + ")"

	plainWidth := 2 + runewidth.StringWidth(location) + 2 + len(severity) + 2 +
		runewidth.StringWidth(p.Message) + 2 + len(origin)

	styledLocation := fmt.Sprintf("%s:%d:%d", s.FilePath.Render(path), p.Line, p.StartColumn+1)

	if width <= 0 || plainWidth <= width {
		builder.WriteString(fmt.Sprintf("  %s  %s  %s  %s\n",
			styledLocation,
			s.FormatSeverity(p.Severity),
			s.Message.Render(p.Message),
			s.Origin.Render(origin),
		))
	} else {
		builder.WriteString(fmt.Sprintf("  %s  %s  %s\n",
			styledLocation,
			s.FormatSeverity(p.Severity),
			s.Origin.Render(origin),
		))
		const msgIndent = "    "
		for _, line := range wrapWords(p.Message, max(width-len(msgIndent), minWrapWidth)) {
			builder.WriteString(msgIndent + s.Message.Render(line) + "\n")
		}
	}

	if showContext && sourceLine != "" {
		builder.WriteString(s.FormatSourceContext(sourceLine, p.StartColumn, p.EndColumn))
	}

	return builder.String()
}

// FormatSeverity returns a styled severity string.
func (s *Styles) FormatSeverity(sev check.Severity) string {
	if sev == check.SeverityWarning {
		return s.Warning.Render("warning")
	}
	return s.Error.Render("error")
}

// FormatSourceContext formats the source line with a marker under the rune
// columns [start, end). Wide characters and tabs are measured by display cell.
func (s *Styles) FormatSourceContext(line string, start, end int) string {
	var builder strings.Builder

	// Indent to align with problem output
	const indent = "        "

	runes := []rune(line)
	start = min(max(start, 0), len(runes))
	end = min(max(end, start), len(runes))

	builder.WriteString(indent + s.SourceLine.Render(expandTabs(line)) + "\n")

	pad := displayWidth(runes[:start])
	width := max(displayWidth(runes[start:end]), 1)
	marker := "^" + strings.Repeat("~", width-1)
	builder.WriteString(indent + strings.Repeat(" ", pad) + s.Caret.Render(marker) + "\n")

	return builder.String()
}

// FormatSketchHeader formats a sketch header for grouped output.
func (s *Styles) FormatSketchHeader(name string, problemCount int) string {
	header := s.SketchName.Render(name)
	switch problemCount {
	case 0:
	case 1:
		header += s.Dim.Render(" (1 problem)")
	default:
		header += s.Dim.Render(fmt.Sprintf(" (%d problems)", problemCount))
	}
	return header
}

func expandTabs(line string) string {
	return strings.ReplaceAll(line, "\t", strings.Repeat(" ", tabWidth))
}

func displayWidth(runes []rune) int {
	width := 0
	for _, r := range runes {
		if r == '\t' {
			width += tabWidth
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}

// wrapWords splits text into lines no wider than width display cells. A
// single word wider than width gets a line of its own.
func wrapWords(text string, width int) []string {
	var lines []string
	var current strings.Builder
	currentWidth := 0

	for _, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)
		if currentWidth > 0 && currentWidth+1+w > width {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
		}
		if currentWidth > 0 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += w
	}
	if currentWidth > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
