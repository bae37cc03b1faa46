package rewrite

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokChar
	tokColor
	tokPunct
)

// token is a lexeme of the input. Comments and whitespace are dropped.
type token struct {
	kind  tokenKind
	start int
	end   int
	text  string
}

func (t token) is(text string) bool {
	return t.kind != tokString && t.kind != tokChar && t.text == text
}

// Coarse issue messages.
const (
	msgUnterminatedComment = "Missing the end of a comment “*/”"
	msgUnterminatedString  = "Missing a closing quotation mark “\"”"
	msgUnterminatedChar    = "Missing a closing single quote “'”"
)

// lex splits text into tokens. Unterminated literals and comments are
// reported and lexing continues after them.
func lex(text string) ([]token, []lexIssue) {
	var (
		tokens []token
		issues []lexIssue
	)

	pos := 0
	for pos < len(text) {
		c := text[pos]
		start := pos

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			pos++

		case c == '/' && pos+1 < len(text) && text[pos+1] == '/':
			for pos < len(text) && text[pos] != '\n' {
				pos++
			}

		case c == '/' && pos+1 < len(text) && text[pos+1] == '*':
			end := indexFrom(text, "*/", pos+2)
			if end < 0 {
				issues = append(issues, lexIssue{offset: start, message: msgUnterminatedComment})
				pos = len(text)
			} else {
				pos = end + 2
			}

		case c == '"' || c == '\'':
			end, ok := scanQuoted(text, pos)
			if !ok {
				msg := msgUnterminatedString
				if c == '\'' {
					msg = msgUnterminatedChar
				}
				issues = append(issues, lexIssue{offset: start, message: msg})
			}
			kind := tokString
			if c == '\'' {
				kind = tokChar
			}
			tokens = append(tokens, token{kind: kind, start: start, end: end, text: text[start:end]})
			pos = end

		case c == '#' && isColorAt(text, pos):
			pos += 7
			tokens = append(tokens, token{kind: tokColor, start: start, end: pos, text: text[start:pos]})

		case isDigit(c) || (c == '.' && pos+1 < len(text) && isDigit(text[pos+1])):
			pos = scanNumber(text, pos)
			tokens = append(tokens, token{kind: tokNumber, start: start, end: pos, text: text[start:pos]})

		case isIdentStart(text, pos):
			pos = scanIdent(text, pos)
			tokens = append(tokens, token{kind: tokIdent, start: start, end: pos, text: text[start:pos]})

		default:
			_, size := utf8.DecodeRuneInString(text[pos:])
			pos += size
			tokens = append(tokens, token{kind: tokPunct, start: start, end: pos, text: text[start:pos]})
		}
	}

	return tokens, issues
}

type lexIssue struct {
	offset  int
	message string
}

func indexFrom(text, needle string, from int) int {
	idx := strings.Index(text[from:], needle)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// scanQuoted returns the end of a string or char literal starting at pos.
// Literals cannot span lines.
func scanQuoted(text string, pos int) (int, bool) {
	quote := text[pos]
	i := pos + 1
	for i < len(text) {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case '\n':
			return i, false
		case quote:
			return i + 1, true
		}
		i++
	}
	if i > len(text) {
		i = len(text)
	}
	return i, false
}

// isColorAt reports whether a web color like #FFCC00 starts at pos.
func isColorAt(text string, pos int) bool {
	if pos+7 > len(text) {
		return false
	}
	for i := pos + 1; i < pos+7; i++ {
		if !isHex(text[i]) {
			return false
		}
	}
	return pos+7 == len(text) || !isIdentPart(text, pos+7)
}

func scanNumber(text string, pos int) int {
	hex := pos+1 < len(text) && text[pos] == '0' && (text[pos+1] == 'x' || text[pos+1] == 'X')
	for pos < len(text) {
		c := text[pos]
		switch {
		case isDigit(c) || c == '.' || c == '_' || unicode.IsLetter(rune(c)):
			pos++
		case (c == '+' || c == '-') && !hex && pos > 0 && (text[pos-1] == 'e' || text[pos-1] == 'E'):
			pos++
		default:
			return pos
		}
	}
	return pos
}

func scanIdent(text string, pos int) int {
	for pos < len(text) && isIdentPart(text, pos) {
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	return pos
}

func isIdentStart(text string, pos int) bool {
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(text string, pos int) bool {
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
