package transform_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sketchdiag/pkg/transform"
)

func TestLineDiff_NoChange(t *testing.T) {
	t.Parallel()

	assert.Nil(t, transform.LineDiff("a", "b", "x\ny\n", "x\ny\n"))
	assert.Nil(t, transform.LineDiff("a", "b", "", ""))
	assert.Empty(t, (*transform.Diff)(nil).String())
}

func TestLineDiff_SingleChange(t *testing.T) {
	t.Parallel()

	base := "void setup() {\n  size(100, 100);\n}\n"
	out := "public class Blink extends PApplet {\nvoid setup() {\n  size(100, 100);\n}\n}\n"

	d := transform.LineDiff("assembled", "parsable", base, out)
	require.NotNil(t, d)
	assert.Equal(t, 2, d.Added)
	assert.Equal(t, 0, d.Removed)
	require.Len(t, d.Hunks, 1)

	want := strings.Join([]string{
		"--- assembled",
		"+++ parsable",
		"@@ -1,3 +1,5 @@",
		"+public class Blink extends PApplet {",
		" void setup() {",
		"   size(100, 100);",
		" }",
		"+}",
		"",
	}, "\n")
	assert.Equal(t, want, d.String())
}

func TestLineDiff_Replacement(t *testing.T) {
	t.Parallel()

	d := transform.LineDiff("a", "b", "one\ntwo\nthree\n", "one\n2\nthree\n")
	require.NotNil(t, d)
	require.Len(t, d.Hunks, 1)

	h := d.Hunks[0]
	assert.Equal(t, 1, h.BaseStart)
	assert.Equal(t, 3, h.BaseCount)
	assert.Equal(t, 3, h.OutputCount)
	assert.Equal(t, []transform.DiffLine{
		{Kind: transform.LineSame, Text: "one"},
		{Kind: transform.LineRemoved, Text: "two"},
		{Kind: transform.LineAdded, Text: "2"},
		{Kind: transform.LineSame, Text: "three"},
	}, h.Lines)
}

func TestLineDiff_SeparateHunks(t *testing.T) {
	t.Parallel()

	var base, out []string
	for i := range 20 {
		line := "line" + string(rune('a'+i))
		base = append(base, line)
		out = append(out, line)
	}
	out[1] = "changed1"
	out[18] = "changed18"

	d := transform.LineDiff("a", "b", strings.Join(base, "\n"), strings.Join(out, "\n"))
	require.NotNil(t, d)
	require.Len(t, d.Hunks, 2)

	assert.Equal(t, 1, d.Hunks[0].BaseStart)
	assert.Equal(t, 5, d.Hunks[0].BaseCount)
	assert.Equal(t, 16, d.Hunks[1].BaseStart)
	assert.Equal(t, 5, d.Hunks[1].BaseCount)
	assert.Equal(t, 16, d.Hunks[1].OutputStart)
}

func TestLineDiff_CloseChangesMerge(t *testing.T) {
	t.Parallel()

	base := "a\nb\nc\nd\ne\nf\ng\nh\n"
	out := "A\nb\nc\nd\ne\nf\ng\nH\n"

	d := transform.LineDiff("x", "y", base, out)
	require.NotNil(t, d)
	require.Len(t, d.Hunks, 1)
	assert.Equal(t, 8, d.Hunks[0].BaseCount)
}

func TestTransformDiff(t *testing.T) {
	t.Parallel()

	tr, err := transform.New("int x = 1;\nfloat y = 2.0;\n", []transform.TextEdit{
		{StartOffset: 24, EndOffset: 24, NewText: "f"},
	})
	require.NoError(t, err)

	d := tr.Diff("parsable", "compilable")
	require.NotNil(t, d)
	assert.Contains(t, d.String(), "-float y = 2.0;\n+float y = 2.0f;\n")
}
