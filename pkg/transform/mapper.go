package transform

import "sort"

// OffsetMapper translates byte offsets between the input (base) and output
// (applied) text of one or more rewrite stages.
//
// Offsets that fall inside a replaced span snap to the start of that span
// on the other side. The policy is the same for every mapper, including
// composed ones.
type OffsetMapper interface {
	// InputOffset maps an offset in the output text back to the input text.
	InputOffset(outputOffset int) int

	// OutputOffset maps an offset in the input text forward to the output text.
	OutputOffset(inputOffset int) int

	// Then chains next after this mapper. If this mapper goes from A to B and
	// next goes from B to C, the result goes from A to C.
	Then(next OffsetMapper) OffsetMapper
}

// Identity returns a mapper that leaves offsets unchanged.
func Identity() OffsetMapper {
	return identityMapper{}
}

type identityMapper struct{}

func (identityMapper) InputOffset(outputOffset int) int { return outputOffset }

func (identityMapper) OutputOffset(inputOffset int) int { return inputOffset }

func (m identityMapper) Then(next OffsetMapper) OffsetMapper { return Compose(m, next) }

// Compose returns a mapper equivalent to first followed by next.
// Identity mappers and nil are elided.
func Compose(first, next OffsetMapper) OffsetMapper {
	if isIdentity(next) {
		if first == nil {
			return Identity()
		}
		return first
	}
	if isIdentity(first) {
		return next
	}
	return &composedMapper{first: first, next: next}
}

func isIdentity(m OffsetMapper) bool {
	if m == nil {
		return true
	}
	_, ok := m.(identityMapper)
	return ok
}

type composedMapper struct {
	first OffsetMapper
	next  OffsetMapper
}

func (m *composedMapper) InputOffset(outputOffset int) int {
	return m.first.InputOffset(m.next.InputOffset(outputOffset))
}

func (m *composedMapper) OutputOffset(inputOffset int) int {
	return m.next.OutputOffset(m.first.OutputOffset(inputOffset))
}

func (m *composedMapper) Then(next OffsetMapper) OffsetMapper { return Compose(m, next) }

// span is one edit expressed in both coordinate spaces.
type span struct {
	inStart, inEnd   int
	outStart, outEnd int
}

// editMapper maps offsets across a single set of sorted, non-overlapping edits.
type editMapper struct {
	spans  []span
	inLen  int
	outLen int
}

func newEditMapper(edits []TextEdit, inLen int) *editMapper {
	m := &editMapper{
		spans: make([]span, 0, len(edits)),
		inLen: inLen,
	}

	delta := 0
	for _, e := range edits {
		outStart := e.StartOffset + delta
		m.spans = append(m.spans, span{
			inStart:  e.StartOffset,
			inEnd:    e.EndOffset,
			outStart: outStart,
			outEnd:   outStart + len(e.NewText),
		})
		delta += e.Delta()
	}
	m.outLen = inLen + delta

	return m
}

func (m *editMapper) InputOffset(outputOffset int) int {
	off := clamp(outputOffset, 0, m.outLen)
	idx := sort.Search(len(m.spans), func(i int) bool {
		s := m.spans[i]
		return off < s.outEnd || off <= s.outStart
	})

	if idx == len(m.spans) {
		if idx == 0 {
			return off
		}
		last := m.spans[idx-1]
		return clamp(last.inEnd+(off-last.outEnd), 0, m.inLen)
	}

	s := m.spans[idx]
	if off >= s.outStart {
		return s.inStart
	}
	return s.inStart - (s.outStart - off)
}

func (m *editMapper) OutputOffset(inputOffset int) int {
	off := clamp(inputOffset, 0, m.inLen)
	idx := sort.Search(len(m.spans), func(i int) bool {
		s := m.spans[i]
		return off < s.inEnd || off <= s.inStart
	})

	if idx == len(m.spans) {
		if idx == 0 {
			return off
		}
		last := m.spans[idx-1]
		return clamp(last.outEnd+(off-last.inEnd), 0, m.outLen)
	}

	s := m.spans[idx]
	if off >= s.inStart {
		return s.outStart
	}
	return s.outStart - (s.inStart - off)
}

func (m *editMapper) Then(next OffsetMapper) OffsetMapper { return Compose(m, next) }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
