package javasitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/sketchdiag/pkg/check"
)

// Nodes that open a new local scope.
var scopeNodes = map[string]bool{
	"block":                        true,
	"constructor_body":             true,
	"switch_block":                 true,
	"for_statement":                true,
	"enhanced_for_statement":       true,
	"catch_clause":                 true,
	"lambda_expression":            true,
	"try_with_resources_statement": true,
}

// Nodes whose contents belong to another type.
var typeBodies = map[string]bool{
	"class_body":           true,
	"interface_body":       true,
	"enum_body":            true,
	"annotation_type_body": true,
}

// scopeStack tracks local names. A local may not shadow another local or
// parameter of the same method.
type scopeStack []map[string]bool

func (s *scopeStack) push() { *s = append(*s, make(map[string]bool)) }

func (s *scopeStack) pop() { *s = (*s)[:len(*s)-1] }

func (s scopeStack) has(name string) bool {
	for _, scope := range s {
		if scope[name] {
			return true
		}
	}
	return false
}

func (s scopeStack) add(name string) {
	s[len(s)-1][name] = true
}

func (b *binder) checkDuplicateLocals(root *sitter.Node) {
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "method_declaration", "constructor_declaration":
			scopes := scopeStack{}
			scopes.push()
			if params := n.ChildByFieldName("parameters"); params != nil {
				b.declareParams(params, &scopes, "Duplicate parameter %s")
			}
			if body := n.ChildByFieldName("body"); body != nil {
				b.walkLocals(body, &scopes)
			}
		}
		return true
	})
}

func (b *binder) declare(name *sitter.Node, scopes *scopeStack, format string) {
	if name == nil {
		return
	}
	text := b.text(name)
	if scopes.has(text) {
		b.report(name, check.SeverityError, format, text)
		return
	}
	scopes.add(text)
}

func (b *binder) declareParams(params *sitter.Node, scopes *scopeStack, format string) {
	for i := range childCount(params) {
		param := params.Child(i)
		switch param.Type() {
		case "formal_parameter", "catch_formal_parameter":
			b.declare(param.ChildByFieldName("name"), scopes, format)
		case "spread_parameter":
			for j := range childCount(param) {
				if child := param.Child(j); child.Type() == "variable_declarator" {
					b.declare(child.ChildByFieldName("name"), scopes, format)
				}
			}
		case "identifier":
			b.declare(param, scopes, format)
		}
	}
}

func (b *binder) walkLocals(n *sitter.Node, scopes *scopeStack) {
	if typeBodies[n.Type()] {
		return
	}
	if scopeNodes[n.Type()] {
		scopes.push()
		defer scopes.pop()
	}

	const dup = "Duplicate local variable %s"
	switch n.Type() {
	case "local_variable_declaration":
		for i := range childCount(n) {
			if child := n.Child(i); child.Type() == "variable_declarator" {
				b.declare(child.ChildByFieldName("name"), scopes, dup)
			}
		}
	case "enhanced_for_statement", "resource":
		b.declare(n.ChildByFieldName("name"), scopes, dup)
	case "catch_clause":
		for i := range childCount(n) {
			if child := n.Child(i); child.Type() == "catch_formal_parameter" {
				b.declare(child.ChildByFieldName("name"), scopes, dup)
			}
		}
	case "lambda_expression":
		if params := n.ChildByFieldName("parameters"); params != nil {
			if params.Type() == "identifier" {
				b.declare(params, scopes, dup)
			} else {
				b.declareParams(params, scopes, dup)
			}
		}
	}

	for i := range childCount(n) {
		b.walkLocals(n.Child(i), scopes)
	}
}
