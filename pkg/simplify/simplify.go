// Package simplify turns raw compiler diagnostics into short messages for
// sketch authors. Simplify is a pure function: no state, no I/O.
package simplify

import (
	"fmt"
	"regexp"
	"strings"
)

// strategy returns a simplified message and true, or false to let the next one try.
type strategy func(raw, lineText string) (string, bool)

// strategies are tried in order; the first match wins.
var strategies = []strategy{
	curlyQuotes,
	unbalancedLine,
	matchTemplates,
	matchSubstrings,
}

// Simplify rewrites raw using lineText, the source line the problem was
// reported on, as context. Unknown messages are returned unchanged.
func Simplify(raw, lineText string) string {
	raw = strings.TrimSpace(raw)
	for _, try := range strategies {
		if msg, ok := try(raw, lineText); ok {
			return msg
		}
	}
	return raw
}

var curlyQuoteRunes = []string{"“", "”", "‘", "’"}

func curlyQuotes(raw, lineText string) (string, bool) {
	if !strings.HasPrefix(raw, "Syntax error") && !strings.Contains(raw, "Invalid character") {
		return "", false
	}
	for _, q := range curlyQuoteRunes {
		if strings.Contains(lineText, q) {
			return fmt.Sprintf("Curly quotes like %s don't work. Use straight quotes. Ex: “c” → \"c\"", q), true
		}
	}
	return "", false
}

type tokenPair struct {
	open, close byte
	name        string
}

var tokenPairs = []tokenPair{
	{open: '(', close: ')', name: "parenthesis"},
	{open: '[', close: ']', name: "square bracket"},
}

// unbalancedLine catches syntax errors on lines whose own parentheses or
// square brackets do not pair up. Curly brackets span lines and are left alone.
func unbalancedLine(raw, lineText string) (string, bool) {
	if !strings.HasPrefix(raw, "Syntax error") || lineText == "" {
		return "", false
	}

	code := stripLiterals(lineText)
	for _, pair := range tokenPairs {
		switch depth := strings.Count(code, string(pair.open)) - strings.Count(code, string(pair.close)); {
		case depth > 0:
			return fmt.Sprintf("Missing a right %s “%c”", pair.name, pair.close), true
		case depth < 0:
			return fmt.Sprintf("Missing a left %s “%c”", pair.name, pair.open), true
		}
	}
	return "", false
}

// stripLiterals blanks out string and char literals and a trailing line comment.
func stripLiterals(line string) string {
	var sb strings.Builder
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return sb.String()
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

type template struct {
	re     *regexp.Regexp
	format func(m []string) string
}

var insertTokenMessages = map[string]string{
	";": "Missing a semicolon “;”",
	"}": "Missing a right curly bracket “}”",
	"{": "Missing a left curly bracket “{”",
	")": "Missing a right parenthesis “)”",
	"(": "Missing a left parenthesis “(”",
	"]": "Missing a right square bracket “]”",
	"[": "Missing a left square bracket “[”",
}

var templates = []template{
	{
		re: regexp.MustCompile(`^Syntax error, insert "(.+?)" to complete (\w+)`),
		format: func(m []string) string {
			if msg, ok := insertTokenMessages[m[1]]; ok {
				return msg
			}
			if strings.HasSuffix(m[1], "Declarators") || m[1] == "Identifier" {
				return "Missing a name or a semicolon"
			}
			return fmt.Sprintf("Missing “%s”", m[1])
		},
	},
	{
		re: regexp.MustCompile(`^Syntax error on token "(.+?)", delete this token`),
		format: func(m []string) string {
			return fmt.Sprintf("Unexpected “%s”, try removing it", m[1])
		},
	},
	{
		re: regexp.MustCompile(`^The import (\S+) cannot be resolved$`),
		format: func(m []string) string {
			return fmt.Sprintf("The package “%s” does not exist. You might be missing a library.", packageOf(m[1]))
		},
	},
	{
		re: regexp.MustCompile(`^The import (\S+) is never used$`),
		format: func(m []string) string {
			return fmt.Sprintf("The import “%s” is not used", m[1])
		},
	},
	{
		re: regexp.MustCompile(`^(\S+) cannot be resolved to a type$`),
		format: func(m []string) string {
			return fmt.Sprintf("The class “%s” does not exist", m[1])
		},
	},
	{
		re: regexp.MustCompile(`^(\S+) cannot be resolved to a variable$`),
		format: func(m []string) string {
			return fmt.Sprintf("The variable “%s” does not exist", m[1])
		},
	},
	{
		re: regexp.MustCompile(`^(\S+) cannot be resolved$`),
		format: func(m []string) string {
			return fmt.Sprintf("The name “%s” cannot be recognized", m[1])
		},
	},
	{
		re: regexp.MustCompile(`^The method (\w+)\((.*)\) is undefined for the type \w+$`),
		format: func(m []string) string {
			return fmt.Sprintf("The function “%s(%s)” does not exist", m[1], m[2])
		},
	},
	{
		re: regexp.MustCompile(`^Duplicate method (\w+)\((.*)\) in type \w+$`),
		format: func(m []string) string {
			return fmt.Sprintf("The function “%s(%s)” is already defined", m[1], m[2])
		},
	},
	{
		re: regexp.MustCompile(`^Duplicate local variable (\w+)$`),
		format: func(m []string) string {
			return fmt.Sprintf("The variable “%s” is already defined", m[1])
		},
	},
	{
		re: regexp.MustCompile(`^Type mismatch: cannot convert from (.+) to (.+)$`),
		format: func(m []string) string {
			return fmt.Sprintf("Type mismatch, “%s” does not match with “%s”", m[1], m[2])
		},
	},
	{
		re: regexp.MustCompile(`^The value of the local variable (\w+) is not used$`),
		format: func(m []string) string {
			return fmt.Sprintf("The value of the local variable “%s” is not used", m[1])
		},
	},
}

func matchTemplates(raw, _ string) (string, bool) {
	for _, tpl := range templates {
		if m := tpl.re.FindStringSubmatch(raw); m != nil {
			return tpl.format(m), true
		}
	}
	return "", false
}

var substrings = []struct {
	needle  string
	message string
}{
	{needle: "String literal is not properly closed", message: "Missing a closing quotation mark “\"”"},
	{needle: "Invalid character constant", message: "Missing a closing single quote “'”"},
	{needle: "Unexpected end of comment", message: "Missing the end of a comment “*/”"},
	{needle: "reached end of file while parsing", message: "Missing a right curly bracket “}”"},
}

func matchSubstrings(raw, _ string) (string, bool) {
	for _, s := range substrings {
		if strings.Contains(raw, s.needle) {
			return s.message, true
		}
	}
	return "", false
}

// packageOf trims an on-demand or single-type import down to its package.
func packageOf(imp string) string {
	imp = strings.TrimSuffix(imp, ".*")
	idx := strings.LastIndexByte(imp, '.')
	if idx < 0 {
		return imp
	}
	last := imp[idx+1:]
	if last != "" && last[0] >= 'A' && last[0] <= 'Z' {
		return imp[:idx]
	}
	return imp
}
