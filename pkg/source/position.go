package source

import "fmt"

// Position is a 1-based line and a 0-based rune column.
type Position struct {
	Line   int
	Column int
}

// IsValid reports whether the position refers to a line.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column >= 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column+1)
}

// Range is a half-open byte range.
type Range struct {
	StartOffset int
	EndOffset   int
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.EndOffset - r.StartOffset
}

// Contains reports whether offset lies within the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.StartOffset && offset < r.EndOffset
}
