package transform

import "strings"

// ApplyEdits applies a sorted, validated slice of edits to base.
// Edits must be prepared with PrepareEdits before calling.
func ApplyEdits(base string, edits []TextEdit) string {
	if len(edits) == 0 {
		return base
	}

	delta := 0
	for _, e := range edits {
		delta += e.Delta()
	}

	var out strings.Builder
	out.Grow(max(0, len(base)+delta))

	cursor := 0
	for _, e := range edits {
		out.WriteString(base[cursor:e.StartOffset])
		out.WriteString(e.NewText)
		cursor = e.EndOffset
	}
	out.WriteString(base[cursor:])

	return out.String()
}
