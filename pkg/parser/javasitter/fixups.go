package javasitter

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/transform"
)

var accessModifiers = map[string]bool{"public": true, "protected": true, "private": true}

// Fixups implements check.Frontend. It makes methods of the sketch class
// public, turns the color type into int, and marks decimal literals as float.
func (f *Frontend) Fixups(ctx context.Context, tree check.Tree) ([]transform.TextEdit, error) {
	t, err := asTree(tree)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	builder := transform.NewEditBuilder()
	root := t.Root()

	for i := range childCount(root) {
		node := root.Child(i)
		if node.Type() == "class_declaration" && f.isSketchClass(node, t.source) {
			addPublicToMethods(node, t.source, builder)
		}
	}

	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "type_identifier":
			if n.Content(t.source) == "color" {
				start, end := span(n)
				builder.ReplaceRange(start, end, "int")
			}
		case "decimal_floating_point_literal":
			addFloatSuffix(n, t.source, builder)
		}
		return true
	})

	return builder.Edits, nil
}

func (f *Frontend) isSketchClass(class *sitter.Node, src []byte) bool {
	super := class.ChildByFieldName("superclass")
	if super == nil {
		return false
	}
	text := strings.TrimSpace(strings.TrimPrefix(super.Content(src), "extends"))
	return text == f.AppletClass || strings.HasSuffix(text, "."+f.AppletClass)
}

func addPublicToMethods(class *sitter.Node, src []byte, builder *transform.EditBuilder) {
	body := class.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := range childCount(body) {
		method := body.Child(i)
		if method.Type() != "method_declaration" || hasAccessModifier(method, src) {
			continue
		}
		builder.Insert(offset(method.StartByte()), "public ")
	}
}

func hasAccessModifier(method *sitter.Node, src []byte) bool {
	for i := range childCount(method) {
		child := method.Child(i)
		if child.Type() != "modifiers" {
			continue
		}
		for _, word := range strings.Fields(child.Content(src)) {
			if accessModifiers[word] {
				return true
			}
		}
	}
	return false
}

// addFloatSuffix appends f to literals like 1.5 or 2e3. Hex floats and
// literals that already carry a suffix are left alone.
func addFloatSuffix(lit *sitter.Node, src []byte, builder *transform.EditBuilder) {
	text := lit.Content(src)
	if text == "" {
		return
	}
	switch text[len(text)-1] {
	case 'f', 'F', 'd', 'D':
		return
	}
	builder.Insert(offset(lit.EndByte()), "f")
}
