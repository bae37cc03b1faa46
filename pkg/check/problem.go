// Package check runs syntax and binding analysis over a rewritten sketch and
// maps every problem back to a tab, line, and column.
package check

import (
	"cmp"
	"fmt"
	"slices"
)

// Severity indicates how serious a problem is.
type Severity int

const (
	// SeverityError marks problems that prevent the sketch from running.
	SeverityError Severity = iota

	// SeverityWarning marks problems worth fixing that do not block a run.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Origin tells which stage found a problem.
type Origin int

const (
	// OriginSyntax problems come from the rewriter or a syntax parse.
	OriginSyntax Origin = iota

	// OriginCompile problems come from binding resolution.
	OriginCompile
)

func (o Origin) String() string {
	if o == OriginCompile {
		return "compile"
	}
	return "syntax"
}

// Problem is one diagnostic in tab coordinates.
type Problem struct {
	// Tab is the index into the sketch's tab list.
	Tab int `json:"tab"`

	// Line is 1-based within the tab.
	Line int `json:"line"`

	// StartColumn and EndColumn are 0-based rune offsets within the line.
	StartColumn int `json:"startColumn"`
	EndColumn   int `json:"endColumn"`

	// Message is the simplified text shown to the user.
	Message string `json:"message"`

	// RawMessage is the text the analyzer produced.
	RawMessage string `json:"rawMessage"`

	Severity Severity `json:"severity"`
	Origin   Origin   `json:"origin"`
}

// IsError reports whether the problem has error severity.
func (p Problem) IsError() bool {
	return p.Severity == SeverityError
}

func (p Problem) String() string {
	return fmt.Sprintf("tab %d %d:%d %s: %s", p.Tab, p.Line, p.StartColumn+1, p.Severity, p.Message)
}

// MarshalText lets severities encode as strings.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalText lets origins encode as strings.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// SortProblems orders problems by tab, line, and column. The sort is stable so
// syntax problems stay ahead of binding problems at the same position.
func SortProblems(problems []Problem) {
	slices.SortStableFunc(problems, func(a, b Problem) int {
		if c := cmp.Compare(a.Tab, b.Tab); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Line, b.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.StartColumn, b.StartColumn)
	})
}

// CountBySeverity returns the error and warning counts.
func CountBySeverity(problems []Problem) (int, int) {
	var errs, warns int
	for _, p := range problems {
		if p.IsError() {
			errs++
		} else {
			warns++
		}
	}
	return errs, warns
}
