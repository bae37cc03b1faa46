package simplify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/sketchdiag/pkg/simplify"
)

func TestSimplify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		line     string
		expected string
	}{
		{
			name:     "missing semicolon",
			raw:      `Syntax error, insert ";" to complete BlockStatements`,
			line:     "  int x = 3",
			expected: "Missing a semicolon “;”",
		},
		{
			name:     "missing closing curly",
			raw:      `Syntax error, insert "}" to complete ClassBody`,
			line:     "void setup() {",
			expected: "Missing a right curly bracket “}”",
		},
		{
			name:     "unbalanced parenthesis on the line wins",
			raw:      `Syntax error, insert ";" to complete BlockStatements`,
			line:     "  rect(10, 20, 30, 40;",
			expected: "Missing a right parenthesis “)”",
		},
		{
			name:     "extra closing bracket",
			raw:      `Syntax error on token "]", delete this token`,
			line:     "  int v = a]0];",
			expected: "Missing a left square bracket “[”",
		},
		{
			name:     "brackets inside strings are ignored",
			raw:      `Syntax error on token "else", delete this token`,
			line:     `  println("(") // )`,
			expected: "Unexpected “else”, try removing it",
		},
		{
			name:     "curly quotes",
			raw:      `Syntax error on token "Invalid Character", delete this token`,
			line:     "  println(“hello”);",
			expected: "Curly quotes like “ don't work. Use straight quotes. Ex: “c” → \"c\"",
		},
		{
			name:     "missing name",
			raw:      `Syntax error, insert "VariableDeclarators" to complete LocalVariableDeclaration`,
			expected: "Missing a name or a semicolon",
		},
		{
			name:     "unresolved import of a class",
			raw:      "The import processing.video.Movie cannot be resolved",
			expected: "The package “processing.video” does not exist. You might be missing a library.",
		},
		{
			name:     "unresolved import on demand",
			raw:      "The import controlP5.* cannot be resolved",
			expected: "The package “controlP5” does not exist. You might be missing a library.",
		},
		{
			name:     "unknown type",
			raw:      "Movie cannot be resolved to a type",
			expected: "The class “Movie” does not exist",
		},
		{
			name:     "unknown variable",
			raw:      "speed cannot be resolved to a variable",
			expected: "The variable “speed” does not exist",
		},
		{
			name:     "undefined method",
			raw:      "The method elipse(int, int, int, int) is undefined for the type Blink",
			expected: "The function “elipse(int, int, int, int)” does not exist",
		},
		{
			name:     "duplicate method",
			raw:      "Duplicate method draw() in type Blink",
			expected: "The function “draw()” is already defined",
		},
		{
			name:     "duplicate local",
			raw:      "Duplicate local variable x",
			expected: "The variable “x” is already defined",
		},
		{
			name:     "unused import",
			raw:      "The import java.util.Map is never used",
			expected: "The import “java.util.Map” is not used",
		},
		{
			name:     "type mismatch",
			raw:      "Type mismatch: cannot convert from float to int",
			expected: "Type mismatch, “float” does not match with “int”",
		},
		{
			name:     "unterminated string",
			raw:      "String literal is not properly closed by a double-quote",
			expected: "Missing a closing quotation mark “\"”",
		},
		{
			name:     "unknown message falls back",
			raw:      "  Something odd happened  ",
			expected: "Something odd happened",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, simplify.Simplify(tc.raw, tc.line))
		})
	}
}
