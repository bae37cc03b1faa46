package rewrite

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/yaklabco/sketchdiag/pkg/source"
	"github.com/yaklabco/sketchdiag/pkg/transform"
)

// AppletClass is the base class sketches extend.
const AppletClass = "PApplet"

// castFunctions maps function-style casts to their PApplet parse methods.
var castFunctions = map[string]string{
	"int":     "PApplet.parseInt",
	"float":   "PApplet.parseFloat",
	"boolean": "PApplet.parseBoolean",
	"byte":    "PApplet.parseByte",
	"char":    "PApplet.parseChar",
}

// Identifiers that look like a method name or return type in a call or
// control statement but never start a declaration.
var notDeclarationKeywords = map[string]bool{
	"if": true, "while": true, "for": true, "switch": true, "catch": true,
	"synchronized": true, "return": true, "new": true, "else": true,
	"throw": true, "case": true, "do": true, "try": true, "assert": true,
}

// PDE is the default rewriter for the sketch dialect.
type PDE struct{}

// NewPDE returns the default rewriter.
func NewPDE() *PDE {
	return &PDE{}
}

// Rewrite implements Rewriter.
func (p *PDE) Rewrite(ctx context.Context, in Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}

	tokens, lexIssues := lex(in.Text)
	issues := make([]lexIssue, 0, len(lexIssues)+1)
	issues = append(issues, lexIssues...)
	if issue, ok := checkBrackets(tokens); ok {
		issues = append(issues, issue)
	}

	className := ClassName(in.Name)
	if len(issues) > 0 {
		return &Output{ClassName: className, Issues: locateIssues(in.Text, issues)}, nil
	}

	depths := braceDepths(tokens)
	mode := detectMode(tokens, depths)

	builder := transform.NewEditBuilder()
	imports := collectImports(tokens, depths, builder)
	rewriteLiterals(tokens, builder)

	builder.Insert(0, header(in, imports, mode, className))
	if footer := footer(mode); footer != "" {
		builder.Insert(len(in.Text), footer)
	}

	tr, err := transform.New(in.Text, builder.Edits)
	if err != nil {
		return nil, fmt.Errorf("rewrite edits: %w", err)
	}

	return &Output{
		Text:      tr.Apply(),
		Edits:     tr.Edits(),
		Imports:   imports,
		Mode:      mode,
		ClassName: className,
	}, nil
}

// ClassName turns a sketch name into a valid class name.
func ClassName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			sb.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "Sketch"
	}
	return sb.String()
}

var closerOf = map[string]string{"(": ")", "[": "]", "{": "}"}

var bracketNames = map[string]string{
	"(": "left parenthesis", ")": "right parenthesis",
	"[": "left square bracket", "]": "right square bracket",
	"{": "left curly bracket", "}": "right curly bracket",
}

// checkBrackets reports the first bracket that has no partner.
func checkBrackets(tokens []token) (lexIssue, bool) {
	var stack []token
	for _, tok := range tokens {
		if tok.kind != tokPunct {
			continue
		}
		switch tok.text {
		case "(", "[", "{":
			stack = append(stack, tok)
		case ")", "]", "}":
			if len(stack) == 0 {
				return lexIssue{
					offset:  tok.start,
					message: fmt.Sprintf("Found one too many “%s” characters without a “%s” to match it", tok.text, openerOf(tok.text)),
				}, true
			}
			top := stack[len(stack)-1]
			if closerOf[top.text] != tok.text {
				want := closerOf[top.text]
				return lexIssue{
					offset:  top.start,
					message: fmt.Sprintf("Missing a %s “%s”", bracketNames[want], want),
				}, true
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		open := stack[0]
		return lexIssue{
			offset:  open.start,
			message: fmt.Sprintf("Found one too many “%s” characters without a “%s” to match it", open.text, closerOf[open.text]),
		}, true
	}
	return lexIssue{}, false
}

func openerOf(closer string) string {
	for open, c := range closerOf {
		if c == closer {
			return open
		}
	}
	return ""
}

func locateIssues(text string, raw []lexIssue) []Issue {
	lines := source.NewLineIndex(text)
	issues := make([]Issue, len(raw))
	for i, r := range raw {
		line, col := lines.LineAt(r.offset)
		issues[i] = Issue{Message: r.message, Offset: r.offset, Line: line, Column: col}
	}
	return issues
}

// braceDepths returns the curly and round nesting in effect at each token.
func braceDepths(tokens []token) []int {
	depths := make([]int, len(tokens))
	depth := 0
	for i, tok := range tokens {
		if tok.kind == tokPunct && (tok.text == "}" || tok.text == ")") {
			depth--
		}
		depths[i] = depth
		if tok.kind == tokPunct && (tok.text == "{" || tok.text == "(") {
			depth++
		}
	}
	return depths
}

// detectMode looks at top-level tokens for class or method declarations.
func detectMode(tokens []token, depths []int) Mode {
	mode := ModeStatic
	for i, tok := range tokens {
		if depths[i] != 0 || tok.kind != tokIdent {
			continue
		}
		if tok.text == "class" && (i == 0 || !tokens[i-1].is(".")) {
			if i+3 < len(tokens) && tokens[i+2].is("extends") && tokens[i+3].is(AppletClass) {
				return ModeJava
			}
			mode = ModeActive
			continue
		}
		if (tok.text == "interface" || tok.text == "enum") && i+1 < len(tokens) && tokens[i+1].kind == tokIdent {
			mode = ModeActive
			continue
		}
		if isMethodDeclaration(tokens, depths, i) {
			mode = ModeActive
		}
	}
	return mode
}

// isMethodDeclaration matches "Type name(...) {" or "Type name(...) throws".
func isMethodDeclaration(tokens []token, depths []int, i int) bool {
	if i == 0 || i+1 >= len(tokens) || notDeclarationKeywords[tokens[i].text] {
		return false
	}
	prev := tokens[i-1]
	switch {
	case prev.kind == tokIdent && !notDeclarationKeywords[prev.text]:
	case prev.is("]"), prev.is(">"):
	default:
		return false
	}
	if !tokens[i+1].is("(") {
		return false
	}

	for j := i + 2; j < len(tokens); j++ {
		if depths[j] == 0 && tokens[j].is(")") {
			if j+1 >= len(tokens) {
				return false
			}
			next := tokens[j+1]
			return next.is("{") || next.is("throws")
		}
	}
	return false
}

// collectImports finds top-level import statements and deletes them.
func collectImports(tokens []token, depths []int, builder *transform.EditBuilder) []Import {
	var imports []Import
	for i := 0; i < len(tokens); i++ {
		if depths[i] != 0 || !tokens[i].is("import") {
			continue
		}
		imp, end, ok := parseImport(tokens, i)
		if !ok {
			continue
		}
		builder.Delete(imp.StartOffset, imp.EndOffset)
		imports = append(imports, imp)
		i = end
	}
	return imports
}

// parseImport reads "import [static] a.b.C;" starting at tokens[i].
func parseImport(tokens []token, i int) (Import, int, bool) {
	imp := Import{StartOffset: tokens[i].start}
	j := i + 1
	if j < len(tokens) && tokens[j].is("static") {
		imp.Static = true
		j++
	}

	var name strings.Builder
	expectPart := true
	for ; j < len(tokens); j++ {
		tok := tokens[j]
		switch {
		case expectPart && (tok.kind == tokIdent || tok.is("*")):
			name.WriteString(tok.text)
			expectPart = false
		case !expectPart && tok.is("."):
			name.WriteByte('.')
			expectPart = true
		case !expectPart && tok.is(";"):
			imp.Name = name.String()
			imp.EndOffset = tok.end
			return imp, j, true
		default:
			return Import{}, j, false
		}
	}
	return Import{}, j, false
}

// rewriteLiterals replaces web colors and function-style casts.
func rewriteLiterals(tokens []token, builder *transform.EditBuilder) {
	for i, tok := range tokens {
		switch tok.kind {
		case tokColor:
			builder.ReplaceRange(tok.start, tok.end, "0xFF"+strings.ToUpper(tok.text[1:]))
		case tokIdent:
			parse, ok := castFunctions[tok.text]
			if !ok || i+1 >= len(tokens) || !tokens[i+1].is("(") {
				continue
			}
			if i > 0 && tokens[i-1].is(".") {
				continue
			}
			builder.ReplaceRange(tok.start, tok.end, parse)
		}
	}
}

func header(in Input, imports []Import, mode Mode, className string) string {
	var sb strings.Builder

	seen := make(map[string]bool, len(imports))
	for _, imp := range imports {
		seen[imp.String()] = true
	}
	emit := func(stmt string) {
		if seen[stmt] {
			return
		}
		seen[stmt] = true
		sb.WriteString(stmt)
		sb.WriteByte('\n')
	}

	for _, name := range in.DefaultImports {
		emit("import " + name + ";")
	}
	for _, pkg := range in.KnownImports {
		emit("import " + pkg + ".*;")
	}
	for _, imp := range imports {
		sb.WriteString(imp.String())
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	switch mode {
	case ModeStatic:
		fmt.Fprintf(&sb, "public class %s extends %s {\npublic void setup() {\n", className, AppletClass)
	case ModeActive:
		fmt.Fprintf(&sb, "public class %s extends %s {\n", className, AppletClass)
	case ModeJava:
	}
	return sb.String()
}

func footer(mode Mode) string {
	switch mode {
	case ModeStatic:
		return "\nnoLoop();\n}\n}\n"
	case ModeActive:
		return "\n}\n"
	default:
		return ""
	}
}
