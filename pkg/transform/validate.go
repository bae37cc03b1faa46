package transform

import (
	"cmp"
	"fmt"
	"slices"
)

// ValidationError reports an edit whose range does not fit its base string.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
}

// ConflictError reports two edits whose ranges overlap.
type ConflictError struct {
	Edit1 TextEdit
	Edit2 TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.Edit1.StartOffset, e.Edit1.EndOffset,
		e.Edit2.StartOffset, e.Edit2.EndOffset)
}

// checkRange validates one edit against a base of baseLen bytes.
func checkRange(e TextEdit, baseLen int) error {
	var msg string
	switch {
	case e.StartOffset < 0:
		msg = "start offset is negative"
	case e.EndOffset < e.StartOffset:
		msg = "end offset is before start offset"
	case e.EndOffset > baseLen:
		msg = fmt.Sprintf("end offset %d exceeds base length %d", e.EndOffset, baseLen)
	default:
		return nil
	}
	return &ValidationError{Edit: e, Message: msg}
}

// sortedCopy range-checks edits and returns them ordered by start, then end.
// Insertions at one offset keep the order they were made in.
func sortedCopy(edits []TextEdit, baseLen int) ([]TextEdit, error) {
	for _, e := range edits {
		if err := checkRange(e, baseLen); err != nil {
			return nil, err
		}
	}
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b TextEdit) int {
		return cmp.Or(cmp.Compare(a.StartOffset, b.StartOffset), cmp.Compare(a.EndOffset, b.EndOffset))
	})
	return sorted, nil
}

// PrepareEdits returns a sorted copy of edits, or an error when an edit is out
// of range or two edits overlap. Edits that only touch are not overlapping.
func PrepareEdits(edits []TextEdit, baseLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return nil, nil
	}
	sorted, err := sortedCopy(edits, baseLen)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].StartOffset < sorted[i-1].EndOffset {
			return nil, &ConflictError{Edit1: sorted[i-1], Edit2: sorted[i]}
		}
	}
	return sorted, nil
}

// PrepareEditsFiltered is like PrepareEdits but resolves overlaps by keeping
// the edit that starts first. It returns the kept and the dropped edits.
func PrepareEditsFiltered(edits []TextEdit, baseLen int) (kept, dropped []TextEdit, err error) {
	if len(edits) == 0 {
		return nil, nil, nil
	}
	sorted, err := sortedCopy(edits, baseLen)
	if err != nil {
		return nil, nil, err
	}

	end := 0
	for _, e := range sorted {
		if len(kept) > 0 && e.StartOffset < end {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
		end = e.EndOffset
	}
	return kept, dropped, nil
}
