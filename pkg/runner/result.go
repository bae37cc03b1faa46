package runner

import (
	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/preproc"
)

// SketchOutcome is the result of checking one sketch folder.
type SketchOutcome struct {
	// Dir is the absolute sketch folder.
	Dir string

	// Name is the sketch name.
	Name string

	// TabPaths holds the file path of each tab, indexed like Problem.Tab.
	TabPaths []string

	// Result is the pass result. Nil if the sketch could not be checked.
	Result *preproc.Result

	// Error is set if the sketch could not be loaded or the pass failed.
	Error error
}

// Problems returns the outcome's problems, or nil.
func (o SketchOutcome) Problems() []check.Problem {
	if o.Result == nil {
		return nil
	}
	return o.Result.Problems
}

// TabPath returns the path for a tab index, falling back to the sketch folder.
func (o SketchOutcome) TabPath(tab int) string {
	if tab < 0 || tab >= len(o.TabPaths) {
		return o.Dir
	}
	return o.TabPaths[tab]
}

// LineText returns a tab line for source context.
func (o SketchOutcome) LineText(tab, line int) string {
	if o.Result == nil || o.Result.Buffer == nil {
		return ""
	}
	return o.Result.Buffer.TabLineText(tab, line)
}

// Stats captures aggregate information about a run.
type Stats struct {
	// SketchesDiscovered is the number of sketch folders found.
	SketchesDiscovered int

	// SketchesChecked is the number of sketches that completed a pass.
	SketchesChecked int

	// SketchesErrored is the number of sketches that could not be checked.
	SketchesErrored int

	// SketchesWithIssues is the number of checked sketches with problems.
	SketchesWithIssues int

	ProblemsTotal int
	Errors        int
	Warnings      int
}

// Result is the overall runner result.
type Result struct {
	// Sketches are ordered by folder path.
	Sketches []SketchOutcome

	Stats Stats
}

// HasFailures reports whether any problem has error severity or any sketch
// could not be checked.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.Errors > 0 || r.Stats.SketchesErrored > 0
}

// HasIssues reports whether any problems were found.
func (r *Result) HasIssues() bool {
	if r == nil {
		return false
	}
	return r.Stats.ProblemsTotal > 0
}

// NewResult aggregates outcomes in the given order.
func NewResult(outcomes ...SketchOutcome) *Result {
	result := &Result{Sketches: make([]SketchOutcome, 0, len(outcomes))}
	result.Stats.SketchesDiscovered = len(outcomes)
	for _, outcome := range outcomes {
		result.accumulate(outcome)
	}
	return result
}

// accumulate updates the result with a sketch outcome.
func (r *Result) accumulate(outcome SketchOutcome) {
	r.Sketches = append(r.Sketches, outcome)

	if outcome.Error != nil {
		r.Stats.SketchesErrored++
		return
	}
	if outcome.Result == nil {
		return
	}

	r.Stats.SketchesChecked++

	problems := outcome.Result.Problems
	r.Stats.ProblemsTotal += len(problems)
	if len(problems) > 0 {
		r.Stats.SketchesWithIssues++
	}

	errs, warns := outcome.Result.Counts()
	r.Stats.Errors += errs
	r.Stats.Warnings += warns
}
