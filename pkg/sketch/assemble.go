// Package sketch models a multi-tab sketch and assembles its analyzable tabs
// into a single buffer whose offsets can be traced back to tab positions.
package sketch

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yaklabco/sketchdiag/pkg/source"
)

// Tab is one source file of a sketch.
type Tab struct {
	// Name is the file name, e.g. "Blink.pde".
	Name string

	// Text is the tab content. Live editor text wins over the saved file.
	Text string

	// Analyzable marks dialect tabs. Other tabs are kept for display only.
	Analyzable bool
}

// Sketch is the read side of a sketch as the preprocessor sees it.
// Implementations must be safe for concurrent use.
type Sketch interface {
	// Name is used as the synthetic top-level class name.
	Name() string

	// Tabs returns a snapshot of the tabs in display order, main tab first.
	Tabs() []Tab
}

// TabSpan records where one tab landed in the assembled buffer.
type TabSpan struct {
	// Index is the tab's position in the sketch's tab list.
	Index int

	// StartOffset is the byte offset of the tab's first character.
	StartOffset int

	// StartLine is the 1-based buffer line of the tab's first line.
	StartLine int

	// Length is the tab text length in bytes, excluding the separator.
	Length int
}

// Buffer is the concatenation of all analyzable tabs, each followed by a newline.
type Buffer struct {
	text  string
	spans []TabSpan
	lines *source.LineIndex
	tabs  []Tab
}

// Assemble concatenates the analyzable tabs in order.
func Assemble(tabs []Tab) *Buffer {
	var sb strings.Builder
	spans := make([]TabSpan, 0, len(tabs))
	line := 1

	for idx, tab := range tabs {
		if !tab.Analyzable {
			continue
		}
		spans = append(spans, TabSpan{
			Index:       idx,
			StartOffset: sb.Len(),
			StartLine:   line,
			Length:      len(tab.Text),
		})
		sb.WriteString(tab.Text)
		sb.WriteByte('\n')
		line += strings.Count(tab.Text, "\n") + 1
	}

	text := sb.String()
	snapshot := make([]Tab, len(tabs))
	copy(snapshot, tabs)

	return &Buffer{
		text:  text,
		spans: spans,
		lines: source.NewLineIndex(text),
		tabs:  snapshot,
	}
}

// Text returns the assembled text.
func (b *Buffer) Text() string {
	return b.text
}

// Spans returns where each analyzable tab starts.
func (b *Buffer) Spans() []TabSpan {
	out := make([]TabSpan, len(b.spans))
	copy(out, b.spans)
	return out
}

// Tabs returns the tab snapshot the buffer was built from.
func (b *Buffer) Tabs() []Tab {
	out := make([]Tab, len(b.tabs))
	copy(out, b.tabs)
	return out
}

// Lines returns the line index over the assembled text.
func (b *Buffer) Lines() *source.LineIndex {
	return b.lines
}

// Location is a position inside one tab.
type Location struct {
	// Tab is the index into the sketch's tab list.
	Tab int

	// Line is 1-based within the tab.
	Line int

	// Column is a 0-based rune offset within the line.
	Column int
}

// Locate maps a buffer offset to a tab location. Offsets past the end land
// on the last tab. ok is false only when no tab was assembled.
func (b *Buffer) Locate(offset int) (Location, bool) {
	if len(b.spans) == 0 {
		return Location{}, false
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(b.text) {
		offset = len(b.text)
	}

	idx := sort.Search(len(b.spans), func(i int) bool {
		return b.spans[i].StartOffset > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	span := b.spans[idx]

	// The separator newline belongs to the tab's last line.
	if tabEnd := span.StartOffset + span.Length; offset > tabEnd {
		offset = tabEnd
	}

	pos := b.lines.Position(offset)
	return Location{
		Tab:    span.Index,
		Line:   pos.Line - span.StartLine + 1,
		Column: pos.Column,
	}, true
}

// TabLineText returns a 1-based line of a tab without its terminator.
func (b *Buffer) TabLineText(tab, line int) string {
	if tab < 0 || tab >= len(b.tabs) {
		return ""
	}
	return source.NewLineIndex(b.tabs[tab].Text).LineContent(line)
}

// RuneColumns converts a byte range within a line to rune columns.
func RuneColumns(lineText string, startByte, endByte int) (int, int) {
	clampTo := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > len(lineText) {
			return len(lineText)
		}
		return v
	}
	startByte, endByte = clampTo(startByte), clampTo(endByte)
	if endByte < startByte {
		endByte = startByte
	}
	start := utf8.RuneCountInString(lineText[:startByte])
	return start, start + utf8.RuneCountInString(lineText[startByte:endByte])
}
