// Package rewrite defines the dialect rewriter contract and provides the
// default rewriter for the sketch dialect.
//
// A rewriter turns the assembled sketch buffer into source the front-end can
// parse. It either succeeds with a list of edits in assembled-buffer
// coordinates, or fails with coarse issues that stop analysis for this pass.
package rewrite

import (
	"context"
	"strings"

	"github.com/yaklabco/sketchdiag/pkg/transform"
)

// Rewriter converts dialect source into host-language source.
//
// Contract:
//   - Rewrite must not retain in.Text or mutate shared state; the
//     preprocessor calls it from a single goroutine but may hold old outputs.
//   - On success, Output.Edits apply to in.Text and reproduce Output.Text,
//     and Output.Issues is empty.
//   - On failure, Output.Issues is non-empty and Edits and Text are unset.
//   - A returned error is an internal fault, not a problem in the sketch.
type Rewriter interface {
	Rewrite(ctx context.Context, in Input) (*Output, error)
}

// Input is what the rewriter needs from the sketch.
type Input struct {
	// Name is the sketch name, used for the wrapping class.
	Name string

	// Text is the assembled buffer.
	Text string

	// DefaultImports are emitted before everything else, e.g. "processing.core.*".
	DefaultImports []string

	// KnownImports are packages found in the sketch's code folder.
	KnownImports []string
}

// Output is the result of one rewrite.
type Output struct {
	Text    string
	Edits   []transform.TextEdit
	Imports []Import
	Mode    Mode

	// ClassName is the name of the wrapping class.
	ClassName string

	Issues []Issue
}

// Failed reports whether the rewrite stopped on issues.
func (o *Output) Failed() bool {
	return len(o.Issues) > 0
}

// Import is one import statement found in the sketch.
type Import struct {
	// Name is the imported name, e.g. "java.util.List" or "processing.video.*".
	Name   string
	Static bool

	// StartOffset and EndOffset delimit the statement in the input buffer.
	StartOffset int
	EndOffset   int
}

// OnDemand reports whether the import ends in ".*".
func (i Import) OnDemand() bool {
	return strings.HasSuffix(i.Name, ".*")
}

// Package returns the package part of the import. For a static import it
// is the package of the enclosing type.
func (i Import) Package() string {
	name := strings.TrimSuffix(i.Name, ".*")
	parts := strings.Split(name, ".")
	for idx, part := range parts {
		if part != "" && part[0] >= 'A' && part[0] <= 'Z' {
			return strings.Join(parts[:idx], ".")
		}
	}
	if i.OnDemand() {
		return name
	}
	return strings.Join(parts[:len(parts)-1], ".")
}

func (i Import) String() string {
	if i.Static {
		return "import static " + i.Name + ";"
	}
	return "import " + i.Name + ";"
}

// Issue is a coarse syntax problem found before parsing.
type Issue struct {
	Message string

	// Offset is in the input buffer.
	Offset int

	// Line is 1-based and Column is a 0-based byte offset, both in the input buffer.
	Line   int
	Column int
}

// Mode is how the sketch is wrapped.
type Mode int

const (
	// ModeStatic sketches are bare statements, wrapped in setup().
	ModeStatic Mode = iota

	// ModeActive sketches declare methods, wrapped in a class.
	ModeActive

	// ModeJava sketches declare their own PApplet subclass.
	ModeJava
)

func (m Mode) String() string {
	switch m {
	case ModeActive:
		return "active"
	case ModeJava:
		return "java"
	default:
		return "static"
	}
}
