package check

import (
	"context"

	"github.com/yaklabco/sketchdiag/pkg/transform"
)

// Tree is a syntax tree produced by a Frontend. Only the Frontend that built
// it knows its concrete type.
type Tree interface {
	// Source returns the text the tree was parsed from.
	Source() string

	// HasErrors reports whether the parse recovered from syntax errors.
	HasErrors() bool
}

// RawProblem is a problem in the coordinates of the parsed text.
type RawProblem struct {
	Message     string
	Severity    Severity
	StartOffset int
	EndOffset   int

	// Import is set when the problem concerns an import statement. It holds
	// the imported name as written, e.g. "java.util.*".
	Import string
}

// Resolver answers binding questions against a classpath.
type Resolver interface {
	// HasPackage reports whether any classpath entry provides pkg.
	HasPackage(pkg string) bool

	// HasClass reports whether the fully qualified top-level class exists.
	HasClass(qualified string) bool
}

// Frontend parses host-language source and resolves its bindings.
//
// The check package defines this interface; parser/javasitter provides the
// default implementation. Implementations must be:
//   - deterministic for a given source and resolver,
//   - safe to call from one goroutine at a time (the preprocessor owns a
//     single worker),
//   - tolerant of syntactically invalid input: Parse returns a tree and
//     problems rather than an error for bad source.
type Frontend interface {
	// Parse builds a tree and reports syntax problems. An error means the
	// parser itself failed, not the source.
	Parse(ctx context.Context, source string) (Tree, []RawProblem, error)

	// Fixups returns structural edits to tree's source that make it compile,
	// such as adding access modifiers. Edits may overlap; later ones are dropped.
	Fixups(ctx context.Context, tree Tree) ([]transform.TextEdit, error)

	// Bind resolves names in tree against resolver and reports semantic problems.
	Bind(ctx context.Context, tree Tree, resolver Resolver) ([]RawProblem, error)
}
