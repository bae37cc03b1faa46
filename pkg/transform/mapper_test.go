package transform_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sketchdiag/pkg/transform"
)

func mustTransform(t *testing.T, base string, edits ...transform.TextEdit) *transform.Transform {
	t.Helper()

	tr, err := transform.New(base, edits)
	require.NoError(t, err)
	return tr
}

func TestMapper_Replacement(t *testing.T) {
	t.Parallel()

	// "hello world" -> "hi world"
	m := mustTransform(t, "hello world", transform.TextEdit{StartOffset: 0, EndOffset: 5, NewText: "hi"}).Mapper()

	assert.Equal(t, 0, m.InputOffset(0))
	assert.Equal(t, 0, m.InputOffset(1), "inside the replacement snaps to its start")
	assert.Equal(t, 5, m.InputOffset(2))
	assert.Equal(t, 6, m.InputOffset(3))
	assert.Equal(t, 11, m.InputOffset(8))

	assert.Equal(t, 0, m.OutputOffset(3), "inside the replaced span snaps to the output start")
	assert.Equal(t, 2, m.OutputOffset(5))
	assert.Equal(t, 8, m.OutputOffset(11))
}

func TestMapper_Insertion(t *testing.T) {
	t.Parallel()

	// "ab" -> "aXYZb"
	m := mustTransform(t, "ab", transform.TextEdit{StartOffset: 1, EndOffset: 1, NewText: "XYZ"}).Mapper()

	assert.Equal(t, 0, m.InputOffset(0))
	assert.Equal(t, 1, m.InputOffset(1))
	assert.Equal(t, 1, m.InputOffset(3))
	assert.Equal(t, 1, m.InputOffset(4))
	assert.Equal(t, 2, m.InputOffset(5))
	assert.Equal(t, 1, m.OutputOffset(1))
	assert.Equal(t, 5, m.OutputOffset(2))
}

func TestMapper_Deletion(t *testing.T) {
	t.Parallel()

	// "abcdef" -> "abef"
	m := mustTransform(t, "abcdef", transform.TextEdit{StartOffset: 2, EndOffset: 4}).Mapper()

	assert.Equal(t, 2, m.InputOffset(2), "output start of a deletion snaps to the deletion start")
	assert.Equal(t, 5, m.InputOffset(3))
	assert.Equal(t, 2, m.OutputOffset(3))
	assert.Equal(t, 2, m.OutputOffset(4))
}

func TestMapper_ClampsOutOfRange(t *testing.T) {
	t.Parallel()

	m := mustTransform(t, "abc", transform.TextEdit{StartOffset: 1, EndOffset: 2, NewText: "long"}).Mapper()

	assert.Equal(t, 0, m.InputOffset(-4))
	assert.Equal(t, 3, m.InputOffset(100))
	assert.Equal(t, 6, m.OutputOffset(100))
}

func TestMapper_EditStartRoundTrip(t *testing.T) {
	t.Parallel()

	base := "void setup() { size(100, 100); }\nvoid draw() { rect(1.5, 2, 3, 4); }\n"
	floatAt := strings.Index(base, "1.5")
	edits := []transform.TextEdit{
		{StartOffset: 0, EndOffset: 0, NewText: "public class S extends PApplet {\n"},
		{StartOffset: 0, EndOffset: 4, NewText: "public void"},
		{StartOffset: floatAt, EndOffset: floatAt + 3, NewText: "1.5f"},
		{StartOffset: len(base), EndOffset: len(base), NewText: "}\n"},
	}
	tr := mustTransform(t, base, edits...)
	m := tr.Mapper()

	delta := 0
	for _, e := range tr.Edits() {
		outStart := e.StartOffset + delta
		assert.Equal(t, e.StartOffset, m.InputOffset(outStart), "edit %+v", e)
		delta += e.Delta()
	}
}

func TestMapper_IdentityBeforeFirstEdit(t *testing.T) {
	t.Parallel()

	base := "size(200, 200);\nbackground(#336699);\n"
	hexAt := strings.Index(base, "#336699")
	m := mustTransform(t, base, transform.TextEdit{
		StartOffset: hexAt, EndOffset: hexAt + 7, NewText: "0xFF336699",
	}).Mapper()

	for offset := 0; offset <= hexAt; offset++ {
		assert.Equal(t, offset, m.InputOffset(offset))
		assert.Equal(t, offset, m.OutputOffset(offset))
	}
}

func TestMapper_CompositionIsAssociative(t *testing.T) {
	t.Parallel()

	a := mustTransform(t, "int x = #FF0000;\ncolor c;\n",
		transform.TextEdit{StartOffset: 8, EndOffset: 15, NewText: "0xFFFF0000"},
		transform.TextEdit{StartOffset: 0, EndOffset: 0, NewText: "class A {\n"},
	)
	b := mustTransform(t, a.Apply(),
		transform.TextEdit{StartOffset: 30, EndOffset: 35, NewText: "int"},
		transform.TextEdit{StartOffset: 10, EndOffset: 10, NewText: "public "},
	)
	c := mustTransform(t, b.Apply(),
		transform.TextEdit{StartOffset: 0, EndOffset: 5, NewText: "final class"},
		transform.TextEdit{StartOffset: len(b.Apply()), EndOffset: len(b.Apply()), NewText: "}\n"},
	)

	left := a.Mapper().Then(b.Mapper()).Then(c.Mapper())
	right := a.Mapper().Then(b.Mapper().Then(c.Mapper()))

	for offset := 0; offset <= len(c.Apply()); offset++ {
		assert.Equal(t, left.InputOffset(offset), right.InputOffset(offset), "input offset %d", offset)
	}
	for offset := 0; offset <= len(a.Base()); offset++ {
		assert.Equal(t, left.OutputOffset(offset), right.OutputOffset(offset), "output offset %d", offset)
	}
}

func TestMapper_ComposeMatchesSequentialMapping(t *testing.T) {
	t.Parallel()

	a := mustTransform(t, "abcdef", transform.TextEdit{StartOffset: 1, EndOffset: 2, NewText: "BBB"})
	b := mustTransform(t, a.Apply(), transform.TextEdit{StartOffset: 6, EndOffset: 7})

	composed := a.Mapper().Then(b.Mapper())
	for offset := 0; offset <= len(b.Apply()); offset++ {
		want := a.Mapper().InputOffset(b.Mapper().InputOffset(offset))
		assert.Equal(t, want, composed.InputOffset(offset))
	}
}

func TestIdentityAndCompose(t *testing.T) {
	t.Parallel()

	id := transform.Identity()
	assert.Equal(t, 42, id.InputOffset(42))
	assert.Equal(t, 42, id.OutputOffset(42))

	m := mustTransform(t, "abc", transform.TextEdit{StartOffset: 0, EndOffset: 0, NewText: "xx"}).Mapper()
	assert.Same(t, m, transform.Compose(id, m))
	assert.Same(t, m, transform.Compose(m, nil))
	assert.Equal(t, 3, transform.Compose(nil, nil).InputOffset(3))
}
