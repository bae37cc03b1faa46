package preproc

import (
	"time"

	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/classpath"
	"github.com/yaklabco/sketchdiag/pkg/rewrite"
	"github.com/yaklabco/sketchdiag/pkg/sketch"
	"github.com/yaklabco/sketchdiag/pkg/transform"
)

// Result is the snapshot of one preprocessing pass. It is never modified
// after it is published.
type Result struct {
	// Pass numbers results in publication order, starting at 1.
	Pass uint64

	SketchName string
	Buffer     *sketch.Buffer

	// Rewrite is the dialect rewriter's output. When it failed, the
	// transforms, mapper, and tree are nil.
	Rewrite *rewrite.Output

	// Parsable maps the assembled buffer to the rewritten text.
	Parsable *transform.Transform

	// Compilable maps the rewritten text to the text after fixups.
	Compilable *transform.Transform

	// Mapper goes from assembled coordinates to compilable coordinates.
	Mapper transform.OffsetMapper

	Tree check.Tree

	Problems             []check.Problem
	HasSyntaxErrors      bool
	HasCompilationErrors bool
	BindingsChecked      bool

	// Classpath is shared with later results that did not rebuild it.
	Classpath *classpath.Classpath

	// boundImports are the imports the classpath was last prepared for.
	// A failed rewrite carries them over from the previous result.
	boundImports []rewrite.Import
	hasBound     bool

	Duration time.Duration
}

// Imports returns the sketch's own import statements.
func (r *Result) Imports() []rewrite.Import {
	if r == nil || r.Rewrite == nil {
		return nil
	}
	return r.Rewrite.Imports
}

// ParsableText is the rewritten sketch, or "" when the rewrite failed.
func (r *Result) ParsableText() string {
	if r == nil || r.Parsable == nil {
		return ""
	}
	return r.Parsable.Apply()
}

// CompilableText is the text handed to the bindings stage.
func (r *Result) CompilableText() string {
	if r == nil || r.Compilable == nil {
		return ""
	}
	return r.Compilable.Apply()
}

// Counts returns the number of errors and warnings.
func (r *Result) Counts() (int, int) {
	if r == nil {
		return 0, 0
	}
	return check.CountBySeverity(r.Problems)
}

// ProblemsInTab filters problems by tab index.
func (r *Result) ProblemsInTab(tab int) []check.Problem {
	if r == nil {
		return nil
	}
	var out []check.Problem
	for _, p := range r.Problems {
		if p.Tab == tab {
			out = append(out, p)
		}
	}
	return out
}

func sameImports(a, b []rewrite.Import) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Static != b[i].Static {
			return false
		}
	}
	return true
}
