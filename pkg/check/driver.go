package check

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/sketchdiag/pkg/rewrite"
	"github.com/yaklabco/sketchdiag/pkg/simplify"
	"github.com/yaklabco/sketchdiag/pkg/sketch"
	"github.com/yaklabco/sketchdiag/pkg/transform"
)

// ErrNoFrontend is returned by Run on a Driver without a Frontend.
var ErrNoFrontend = errors.New("no frontend configured")

// Input is one analysis request.
type Input struct {
	// Buffer is the assembled sketch.
	Buffer *sketch.Buffer

	// Parsable is the rewriter stage: assembled text to parsable text.
	Parsable *transform.Transform

	// Imports are the sketch's own import statements in assembled
	// coordinates. Problems about these imports are reported at the
	// statement; problems about other imports of the header are reported
	// only when they are errors.
	Imports []rewrite.Import

	// Resolver is the classpath for the bindings stage. When nil, the
	// bindings stage is skipped.
	Resolver Resolver
}

// Output is the outcome of both stages.
type Output struct {
	// Compilable is the fixup stage: parsable text to compilable text.
	Compilable *transform.Transform

	// Mapper goes from assembled coordinates to compilable coordinates.
	Mapper transform.OffsetMapper

	// Tree is the parse of the compilable text.
	Tree Tree

	// SkippedFixups lists fixups dropped because they overlapped earlier ones.
	SkippedFixups []transform.TextEdit

	Problems []Problem

	HasSyntaxErrors      bool
	HasCompilationErrors bool
	BindingsChecked      bool
}

// Driver runs the parsable and bindings stages.
type Driver struct {
	frontend Frontend
}

// NewDriver creates a driver over frontend.
func NewDriver(frontend Frontend) *Driver {
	return &Driver{frontend: frontend}
}

// Run parses the parsable text, applies structural fixups, parses the
// compilable text, and resolves bindings when the parse is clean.
func (d *Driver) Run(ctx context.Context, in Input) (*Output, error) {
	if d.frontend == nil {
		return nil, ErrNoFrontend
	}

	parsableText := in.Parsable.Apply()
	first, _, err := d.frontend.Parse(ctx, parsableText)
	if err != nil {
		return nil, fmt.Errorf("parse parsable stage: %w", err)
	}

	fixups, err := d.frontend.Fixups(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("fixups: %w", err)
	}
	compilable, skipped, err := transform.NewFiltered(parsableText, fixups)
	if err != nil {
		return nil, fmt.Errorf("apply fixups: %w", err)
	}

	tree, syntaxRaw, err := d.frontend.Parse(ctx, compilable.Apply())
	if err != nil {
		return nil, fmt.Errorf("parse compilable stage: %w", err)
	}

	out := &Output{
		Compilable:    compilable,
		Mapper:        in.Parsable.Mapper().Then(compilable.Mapper()),
		Tree:          tree,
		SkippedFixups: skipped,
	}

	problems := make([]Problem, 0, len(syntaxRaw))
	for _, raw := range syntaxRaw {
		p := mapProblem(in.Buffer, out.Mapper, raw, OriginSyntax)
		out.HasSyntaxErrors = out.HasSyntaxErrors || p.IsError()
		problems = append(problems, p)
	}

	if !out.HasSyntaxErrors && in.Resolver != nil {
		bindRaw, err := d.frontend.Bind(ctx, tree, in.Resolver)
		if err != nil {
			return nil, fmt.Errorf("bind: %w", err)
		}
		out.BindingsChecked = true
		for _, raw := range bindRaw {
			p, ok := mapBindProblem(in, out.Mapper, raw)
			if !ok {
				continue
			}
			out.HasCompilationErrors = out.HasCompilationErrors || p.IsError()
			problems = append(problems, p)
		}
	}

	SortProblems(problems)
	out.Problems = problems
	return out, nil
}

// mapProblem translates a compilable-text problem into tab coordinates.
func mapProblem(buf *sketch.Buffer, mapper transform.OffsetMapper, raw RawProblem, origin Origin) Problem {
	start := mapper.InputOffset(raw.StartOffset)
	end := mapper.InputOffset(raw.EndOffset)
	return locate(buf, start, end, raw.Message, raw.Severity, origin)
}

// mapBindProblem places import problems on the sketch's import statement.
// Warnings about header imports the sketch did not write are dropped.
func mapBindProblem(in Input, mapper transform.OffsetMapper, raw RawProblem) (Problem, bool) {
	if raw.Import == "" {
		return mapProblem(in.Buffer, mapper, raw, OriginCompile), true
	}
	for _, imp := range in.Imports {
		if imp.Name == raw.Import {
			return locate(in.Buffer, imp.StartOffset, imp.EndOffset, raw.Message, raw.Severity, OriginCompile), true
		}
	}
	if raw.Severity == SeverityWarning {
		return Problem{}, false
	}
	return mapProblem(in.Buffer, mapper, raw, OriginCompile), true
}

// FromIssues converts rewriter issues into syntax problems.
func FromIssues(buf *sketch.Buffer, issues []rewrite.Issue) []Problem {
	problems := make([]Problem, 0, len(issues))
	for _, issue := range issues {
		problems = append(problems, locate(buf, issue.Offset, issue.Offset+1, issue.Message, SeverityError, OriginSyntax))
	}
	SortProblems(problems)
	return problems
}

func locate(buf *sketch.Buffer, start, end int, raw string, severity Severity, origin Origin) Problem {
	loc, ok := buf.Locate(start)
	if !ok {
		return Problem{Line: 1, Message: simplify.Simplify(raw, ""), RawMessage: raw, Severity: severity, Origin: origin}
	}

	lineText := buf.TabLineText(loc.Tab, loc.Line)
	endColumn := loc.Column
	if endLoc, ok := buf.Locate(end); ok && end > start && endLoc.Tab == loc.Tab && endLoc.Line == loc.Line {
		endColumn = endLoc.Column
	} else if end > start {
		endColumn = len([]rune(lineText))
	}
	if endColumn <= loc.Column && loc.Column < len([]rune(lineText)) {
		endColumn = loc.Column + 1
	}

	return Problem{
		Tab:         loc.Tab,
		Line:        loc.Line,
		StartColumn: loc.Column,
		EndColumn:   endColumn,
		Message:     simplify.Simplify(raw, lineText),
		RawMessage:  raw,
		Severity:    severity,
		Origin:      origin,
	}
}
