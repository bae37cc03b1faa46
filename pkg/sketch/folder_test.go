package sketch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sketchdiag/pkg/sketch"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newSketchDir(t *testing.T, name string, files map[string]string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), name)
	for file, content := range files {
		writeFile(t, filepath.Join(dir, file), content)
	}
	return dir
}

func TestLoadFolder_TabOrder(t *testing.T) {
	t.Parallel()

	dir := newSketchDir(t, "Blink", map[string]string{
		"Zeta.pde":        "void z() {}\n",
		"Blink.pde":       "void setup() {}\n",
		"Alpha.pde":       "void a() {}\n",
		"Helper.java":     "class Helper {}\n",
		"notes.txt":       "todo\n",
		"data/points.csv": "1,2\n",
	})

	folder, err := sketch.LoadFolder(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "Blink", folder.Name())
	assert.Equal(t, filepath.Join(folder.Dir(), "code"), folder.CodeDir())

	tabs := folder.Tabs()
	names := make([]string, len(tabs))
	for i, tab := range tabs {
		names[i] = tab.Name
	}
	assert.Equal(t, []string{"Blink.pde", "Alpha.pde", "Helper.java", "Zeta.pde"}, names)
	assert.True(t, tabs[0].Analyzable)
	assert.False(t, tabs[2].Analyzable)
	assert.Equal(t, "void setup() {}\n", tabs[0].Text)
	assert.Equal(t, filepath.Join(folder.Dir(), "Alpha.pde"), folder.TabPath(1))
}

func TestLoadFolder_MissingMainTab(t *testing.T) {
	t.Parallel()

	dir := newSketchDir(t, "Blink", map[string]string{"Other.pde": "int x;\n"})

	_, err := sketch.LoadFolder(context.Background(), dir)
	require.ErrorIs(t, err, sketch.ErrNotSketch)
}

func TestFolder_LiveTextWins(t *testing.T) {
	t.Parallel()

	dir := newSketchDir(t, "Live", map[string]string{"Live.pde": "int saved;\n"})
	folder, err := sketch.LoadFolder(context.Background(), dir)
	require.NoError(t, err)

	folder.SetLiveText("Live.pde", "int edited;\n")
	assert.Equal(t, "int edited;\n", folder.Tabs()[0].Text)

	folder.ClearLiveText("Live.pde")
	assert.Equal(t, "int saved;\n", folder.Tabs()[0].Text)
}

func TestFolder_Refresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := newSketchDir(t, "Watch", map[string]string{"Watch.pde": "int a;\n"})
	folder, err := sketch.LoadFolder(ctx, dir)
	require.NoError(t, err)

	changed, err := folder.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	writeFile(t, filepath.Join(dir, "Watch.pde"), "int a;\nint b;\n")
	changed, err = folder.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "int a;\nint b;\n", folder.Tabs()[0].Text)

	writeFile(t, filepath.Join(dir, "Extra.pde"), "void extra() {}\n")
	changed, err = folder.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, folder.Tabs(), 2)
}

func TestStatic_SetText(t *testing.T) {
	t.Parallel()

	s := sketch.NewStatic("Demo", "int a;", "int b;")
	s.SetText(1, "int c;")
	s.AddTab(sketch.Tab{Name: "Util.java", Text: "class Util {}"})

	tabs := s.Tabs()
	require.Len(t, tabs, 3)
	assert.Equal(t, "Demo.pde", tabs[0].Name)
	assert.Equal(t, "tab1.pde", tabs[1].Name)
	assert.Equal(t, "int c;", tabs[1].Text)
}
