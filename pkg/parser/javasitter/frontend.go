// Package javasitter is the default check.Frontend. It parses Java with
// tree-sitter, so broken source still yields a tree with ERROR and MISSING
// nodes that become syntax problems.
package javasitter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/yaklabco/sketchdiag/pkg/check"
)

// ErrForeignTree is returned when a tree from another Frontend is passed in.
var ErrForeignTree = errors.New("tree was not produced by javasitter")

// Frontend implements check.Frontend for Java. It is safe for concurrent use;
// each call builds its own parser.
type Frontend struct {
	// AppletClass is the superclass that marks the sketch class.
	AppletClass string
}

// New returns a Frontend for sketches extending PApplet.
func New() *Frontend {
	return &Frontend{AppletClass: "PApplet"}
}

// Tree is a parsed compilation unit.
type Tree struct {
	source []byte
	tree   *sitter.Tree
}

// Source implements check.Tree.
func (t *Tree) Source() string {
	return string(t.source)
}

// HasErrors implements check.Tree.
func (t *Tree) HasErrors() bool {
	return t.tree.RootNode().HasError()
}

// Root returns the compilation unit node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Parse implements check.Frontend.
func (f *Frontend) Parse(ctx context.Context, source string) (check.Tree, []check.RawProblem, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	content := []byte(source)
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}

	t := &Tree{source: content, tree: tree}
	return t, syntaxProblems(t.Root(), content), nil
}

func asTree(tree check.Tree) (*Tree, error) {
	t, ok := tree.(*Tree)
	if !ok || t == nil {
		return nil, ErrForeignTree
	}
	return t, nil
}

// Names of grammar nodes in messages, where they differ from the camel-cased node type.
var contextNames = map[string]string{
	"block":            "BlockStatements",
	"constructor_body": "BlockStatements",
	"class_body":       "ClassBody",
	"program":          "CompilationUnit",
	"argument_list":    "ArgumentList",
}

func syntaxProblems(root *sitter.Node, src []byte) []check.RawProblem {
	var problems []check.RawProblem
	walk(root, func(n *sitter.Node) bool {
		switch {
		case n.IsMissing():
			problems = append(problems, missingProblem(n))
			return false
		case n.Type() == "ERROR":
			problems = append(problems, errorProblem(n, src))
			return false
		}
		return n.HasError()
	})
	return problems
}

func missingProblem(n *sitter.Node) check.RawProblem {
	token := n.Type()
	if n.IsNamed() {
		token = camel(token)
	}
	where := "CompilationUnit"
	if parent := n.Parent(); parent != nil {
		where = contextName(parent.Type())
	}
	start := offset(n.StartByte())
	return check.RawProblem{
		Message:     fmt.Sprintf("Syntax error, insert %q to complete %s", token, where),
		Severity:    check.SeverityError,
		StartOffset: start,
		EndOffset:   start,
	}
}

func errorProblem(n *sitter.Node, src []byte) check.RawProblem {
	content := strings.TrimSpace(n.Content(src))
	msg := "Syntax error, unexpected input"
	switch {
	case content == "":
	case n.ChildCount() <= 1 && !strings.ContainsAny(content, " \t\n"):
		msg = fmt.Sprintf("Syntax error on token %q, delete this token", content)
	default:
		msg = "Syntax error on tokens, delete these tokens"
	}
	return check.RawProblem{
		Message:     msg,
		Severity:    check.SeverityError,
		StartOffset: offset(n.StartByte()),
		EndOffset:   offset(n.EndByte()),
	}
}

func contextName(nodeType string) string {
	if name, ok := contextNames[nodeType]; ok {
		return name
	}
	return camel(nodeType)
}

// camel turns "local_variable_declaration" into "LocalVariableDeclaration".
func camel(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

// walk visits n and, while fn returns true, its descendants in source order.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := range childCount(n) {
		walk(n.Child(i), fn)
	}
}

func childCount(n *sitter.Node) int {
	return safecast.MustConv[int](n.ChildCount())
}

func offset(b uint32) int {
	return safecast.MustConv[int](b)
}

func span(n *sitter.Node) (int, int) {
	return offset(n.StartByte()), offset(n.EndByte())
}
