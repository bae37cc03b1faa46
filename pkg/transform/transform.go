package transform

// Transform is one rewrite stage: an immutable base string plus the sorted,
// non-overlapping edits applied to it.
type Transform struct {
	base    string
	edits   []TextEdit
	applied string
	mapper  *editMapper
}

// New validates and sorts edits against base and applies them.
// Overlapping edits are an error.
func New(base string, edits []TextEdit) (*Transform, error) {
	prepared, err := PrepareEdits(edits, len(base))
	if err != nil {
		return nil, err
	}
	return newPrepared(base, prepared), nil
}

// NewFiltered is like New but drops edits that overlap an earlier one.
// The dropped edits are returned alongside the transform.
func NewFiltered(base string, edits []TextEdit) (*Transform, []TextEdit, error) {
	accepted, skipped, err := PrepareEditsFiltered(edits, len(base))
	if err != nil {
		return nil, nil, err
	}
	return newPrepared(base, accepted), skipped, nil
}

func newPrepared(base string, edits []TextEdit) *Transform {
	return &Transform{
		base:    base,
		edits:   edits,
		applied: ApplyEdits(base, edits),
		mapper:  newEditMapper(edits, len(base)),
	}
}

// Base returns the text the edits apply to.
func (t *Transform) Base() string {
	return t.base
}

// Apply returns the rewritten text.
func (t *Transform) Apply() string {
	return t.applied
}

// Edits returns a copy of the sorted edits.
func (t *Transform) Edits() []TextEdit {
	out := make([]TextEdit, len(t.edits))
	copy(out, t.edits)
	return out
}

// Mapper returns the offset mapper from base to applied coordinates.
func (t *Transform) Mapper() OffsetMapper {
	return t.mapper
}
