package javasitter

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/sketchdiag/pkg/check"
)

// importDecl is one import statement of the compilation unit.
type importDecl struct {
	name   string // as written, e.g. "java.util.*"
	static bool
	node   *sitter.Node
}

func (d importDecl) onDemand() bool {
	return strings.HasSuffix(d.name, ".*")
}

func (d importDecl) simpleName() string {
	return d.name[strings.LastIndexByte(d.name, '.')+1:]
}

// binder holds the per-call state of Bind.
type binder struct {
	src      []byte
	resolver check.Resolver
	problems []check.RawProblem

	imports  []importDecl
	declared map[string]bool
	used     map[string]bool
}

// Bind implements check.Frontend. It reports unresolved imports and type
// names, duplicate methods and locals, and unused single-type imports.
// Type names are only checked when the resolver knows java.lang.
func (f *Frontend) Bind(ctx context.Context, tree check.Tree, resolver check.Resolver) ([]check.RawProblem, error) {
	t, err := asTree(tree)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &binder{
		src:      t.source,
		resolver: resolver,
		declared: make(map[string]bool),
		used:     make(map[string]bool),
	}
	root := t.Root()

	b.collect(root)
	b.checkImports()
	if resolver.HasPackage("java.lang") {
		b.checkTypes(root)
	}
	b.checkDuplicateMethods(root)
	b.checkDuplicateLocals(root)
	b.checkUnusedImports()

	return b.problems, nil
}

func (b *binder) text(n *sitter.Node) string {
	return n.Content(b.src)
}

func (b *binder) report(n *sitter.Node, severity check.Severity, format string, args ...any) {
	start, end := span(n)
	b.problems = append(b.problems, check.RawProblem{
		Message:     fmt.Sprintf(format, args...),
		Severity:    severity,
		StartOffset: start,
		EndOffset:   end,
	})
}

// collect gathers imports, declared type names, and every name used outside imports.
func (b *binder) collect(root *sitter.Node) {
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_declaration":
			b.imports = append(b.imports, b.parseImport(n))
			return false
		case "class_declaration", "interface_declaration", "enum_declaration",
			"record_declaration", "annotation_type_declaration":
			if name := n.ChildByFieldName("name"); name != nil {
				b.declared[b.text(name)] = true
			}
		case "type_parameter":
			for i := range childCount(n) {
				if child := n.Child(i); child.Type() == "type_identifier" || child.Type() == "identifier" {
					b.declared[b.text(child)] = true
					break
				}
			}
		case "identifier", "type_identifier":
			b.used[b.text(n)] = true
		}
		return true
	})
}

func (b *binder) parseImport(n *sitter.Node) importDecl {
	decl := importDecl{node: n}
	var name strings.Builder
	for i := range childCount(n) {
		child := n.Child(i)
		switch child.Type() {
		case "import", ";":
		case "static":
			decl.static = true
		default:
			name.WriteString(strings.Join(strings.Fields(b.text(child)), ""))
		}
	}
	decl.name = name.String()
	return decl
}

func (b *binder) reportImport(decl importDecl, severity check.Severity, format string, args ...any) {
	b.report(decl.node, severity, format, args...)
	b.problems[len(b.problems)-1].Import = decl.name
}

func (b *binder) checkImports() {
	for _, decl := range b.imports {
		target := strings.TrimSuffix(decl.name, ".*")
		var ok bool
		switch {
		case decl.static:
			// import static a.b.C.member; or import static a.b.C.*;
			if !decl.onDemand() {
				target = target[:max(strings.LastIndexByte(target, '.'), 0)]
			}
			ok = b.resolver.HasClass(target)
		case decl.onDemand():
			ok = b.resolver.HasPackage(target) || b.resolver.HasClass(target)
		default:
			ok = b.resolver.HasClass(target)
		}
		if !ok {
			b.reportImport(decl, check.SeverityError, "The import %s cannot be resolved", target)
		}
	}
}

func (b *binder) resolveType(name string) bool {
	if b.declared[name] || name == "var" {
		return true
	}
	for _, decl := range b.imports {
		if decl.static {
			continue
		}
		if decl.onDemand() {
			if b.resolver.HasClass(strings.TrimSuffix(decl.name, "*") + name) {
				return true
			}
		} else if decl.simpleName() == name {
			// Unresolvable single-type imports are reported on the import.
			return true
		}
	}
	return b.resolver.HasClass("java.lang."+name) || b.resolver.HasClass(name)
}

func (b *binder) checkTypes(root *sitter.Node) {
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_declaration", "scoped_type_identifier":
			return false
		case "type_identifier":
			if name := b.text(n); !b.resolveType(name) {
				b.report(n, check.SeverityError, "%s cannot be resolved to a type", name)
			}
		}
		return true
	})
}

func (b *binder) checkDuplicateMethods(root *sitter.Node) {
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "class_body", "interface_body", "enum_body_declarations":
		default:
			return true
		}

		typeName := enclosingTypeName(n, b.src)
		seen := make(map[string][]*sitter.Node)
		var order []string
		for i := range childCount(n) {
			method := n.Child(i)
			if method.Type() != "method_declaration" {
				continue
			}
			name := method.ChildByFieldName("name")
			if name == nil {
				continue
			}
			sig := b.text(name) + "(" + b.paramTypes(method) + ")"
			if _, ok := seen[sig]; !ok {
				order = append(order, sig)
			}
			seen[sig] = append(seen[sig], name)
		}
		for _, sig := range order {
			if nodes := seen[sig]; len(nodes) > 1 {
				for _, name := range nodes {
					b.report(name, check.SeverityError, "Duplicate method %s in type %s", sig, typeName)
				}
			}
		}
		return true
	})
}

func (b *binder) paramTypes(method *sitter.Node) string {
	params := method.ChildByFieldName("parameters")
	if params == nil {
		return ""
	}
	var types []string
	for i := range childCount(params) {
		param := params.Child(i)
		switch param.Type() {
		case "formal_parameter":
			typ := compact(b.text(param.ChildByFieldName("type")))
			if dims := param.ChildByFieldName("dimensions"); dims != nil {
				typ += compact(b.text(dims))
			}
			types = append(types, typ)
		case "spread_parameter":
			for j := range childCount(param) {
				if child := param.Child(j); child.IsNamed() && child.Type() != "variable_declarator" && child.Type() != "modifiers" {
					types = append(types, compact(b.text(child))+"...")
					break
				}
			}
		}
	}
	return strings.Join(types, ", ")
}

func enclosingTypeName(body *sitter.Node, src []byte) string {
	for n := body.Parent(); n != nil; n = n.Parent() {
		if name := n.ChildByFieldName("name"); name != nil {
			return name.Content(src)
		}
	}
	return ""
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func (b *binder) checkUnusedImports() {
	for _, decl := range b.imports {
		if decl.static || decl.onDemand() {
			continue
		}
		if !b.used[decl.simpleName()] {
			b.reportImport(decl, check.SeverityWarning, "The import %s is never used", decl.name)
		}
	}
}
