// Package source provides line bookkeeping for text buffers: byte offsets to
// 1-based lines and back, plus rune columns within a line.
package source

import (
	"sort"
	"unicode/utf8"
)

// LineInfo holds byte offsets for a single line.
type LineInfo struct {
	// StartOffset is the byte offset of the first character of the line.
	StartOffset int

	// NewlineStart is the byte offset where the line terminator begins.
	// Equal to EndOffset for the last line when it has no terminator.
	NewlineStart int

	// EndOffset is the byte offset just past the line terminator.
	EndOffset int
}

// LineIndex maps between byte offsets and line numbers of a text.
type LineIndex struct {
	text  string
	lines []LineInfo
}

// NewLineIndex builds the line table for text.
// Both LF and CRLF terminators are recognized.
func NewLineIndex(text string) *LineIndex {
	lines := make([]LineInfo, 0, 16)
	lineStart := 0

	for idx := 0; idx < len(text); idx++ {
		if text[idx] != '\n' {
			continue
		}
		newlineStart := idx
		if idx > 0 && text[idx-1] == '\r' {
			newlineStart = idx - 1
		}
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	// The text after the last terminator is a line too, possibly empty.
	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(text),
		EndOffset:    len(text),
	})

	return &LineIndex{text: text, lines: lines}
}

// Text returns the indexed text.
func (x *LineIndex) Text() string {
	return x.text
}

// LineCount returns the number of lines. A text ending in a newline has an
// empty final line, which is counted.
func (x *LineIndex) LineCount() int {
	return len(x.lines)
}

// Line returns the metadata for a 1-based line number.
func (x *LineIndex) Line(line int) (LineInfo, bool) {
	if line < 1 || line > len(x.lines) {
		return LineInfo{}, false
	}
	return x.lines[line-1], true
}

// LineAt converts a byte offset to a 1-based line and a 0-based byte column.
// Offsets past the end resolve to the last line.
func (x *LineIndex) LineAt(offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(x.text) {
		offset = len(x.text)
	}

	idx := sort.Search(len(x.lines), func(i int) bool {
		return x.lines[i].EndOffset > offset
	})
	if idx >= len(x.lines) {
		idx = len(x.lines) - 1
	}

	return idx + 1, offset - x.lines[idx].StartOffset
}

// Position converts a byte offset to a line and rune column.
func (x *LineIndex) Position(offset int) Position {
	line, byteCol := x.LineAt(offset)
	info := x.lines[line-1]
	end := info.StartOffset + byteCol
	if end > info.NewlineStart {
		end = info.NewlineStart
	}
	return Position{
		Line:   line,
		Column: utf8.RuneCountInString(x.text[info.StartOffset:end]),
	}
}

// Offset converts a 1-based line and 0-based byte column to a byte offset.
func (x *LineIndex) Offset(line, col int) (int, bool) {
	info, ok := x.Line(line)
	if !ok || col < 0 {
		return 0, false
	}

	offset := info.StartOffset + col
	if offset > info.NewlineStart {
		return 0, false
	}
	return offset, true
}

// LineContent returns a 1-based line without its terminator.
func (x *LineIndex) LineContent(line int) string {
	info, ok := x.Line(line)
	if !ok {
		return ""
	}
	return x.text[info.StartOffset:info.NewlineStart]
}
