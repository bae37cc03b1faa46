// Package pretty renders problems, sketch headers, and summaries for the
// terminal with lipgloss.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles holds one lipgloss style per element of the text output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style

	FilePath   lipgloss.Style
	Location   lipgloss.Style
	Origin     lipgloss.Style
	Message    lipgloss.Style
	SourceLine lipgloss.Style
	Caret      lipgloss.Style

	SketchName lipgloss.Style

	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// ANSI 16 palette indexes.
const (
	ansiSilver = "7"
	ansiGray   = "8"
	ansiRed    = "9"
	ansiGreen  = "10"
	ansiYellow = "11"
)

// painter builds styles; with color off every style renders text unchanged.
type painter struct{ color bool }

func (p painter) plain() lipgloss.Style { return lipgloss.NewStyle() }

func (p painter) fg(ansi string) lipgloss.Style {
	if !p.color {
		return p.plain()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ansi))
}

func (p painter) strong(ansi string) lipgloss.Style {
	if !p.color {
		return p.plain()
	}
	return p.fg(ansi).Bold(true)
}

func (p painter) bold() lipgloss.Style {
	if !p.color {
		return p.plain()
	}
	return lipgloss.NewStyle().Bold(true)
}

// NewStyles returns the styles for colored or plain output.
func NewStyles(colorEnabled bool) *Styles {
	p := painter{color: colorEnabled}

	sketch := p.bold()
	if colorEnabled {
		sketch = sketch.Underline(true)
	}

	return &Styles{
		Error:   p.strong(ansiRed),
		Warning: p.strong(ansiYellow),

		FilePath:   p.bold(),
		Location:   p.fg(ansiGray),
		Origin:     p.fg(ansiGray),
		Message:    p.plain(),
		SourceLine: p.fg(ansiSilver),
		Caret:      p.fg(ansiRed),

		SketchName: sketch,

		SummaryTitle: p.bold(),
		SummaryValue: p.plain(),
		Success:      p.strong(ansiGreen),
		Failure:      p.strong(ansiRed),

		Dim:  p.fg(ansiGray),
		Bold: p.bold(),
	}
}

// IsColorEnabled resolves a --color value for writer. "always" and "never"
// are taken as given. Anything else is auto: color only for a terminal, and
// never when NO_COLOR is set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
