package classpath_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sketchdiag/pkg/classpath"
	"github.com/yaklabco/sketchdiag/pkg/rewrite"
)

type fixture struct {
	runtime  string
	core     string
	modeLibs string
	userLibs string
	codeDir  string
	builder  *classpath.Builder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	f := &fixture{
		modeLibs: mkdir(t, root, "mode", "libraries"),
		userLibs: mkdir(t, root, "sketchbook", "libraries"),
		codeDir:  mkdir(t, root, "Sketch", "code"),
	}
	jdk := mkdir(t, root, "jdk")
	f.runtime = writeJar(t, filepath.Join(jdk, "rt.jar"), "java/lang/Object.class", "java/util/Map.class")
	f.core = writeJar(t, filepath.Join(root, "mode", "core.jar"), "processing/core/PApplet.class")

	writeLibrary(t, f.modeLibs, "video", "processing/video/Movie.class")
	writeLibrary(t, f.userLibs, "peasycam", "peasy/PeasyCam.class")
	writeJar(t, filepath.Join(f.codeDir, "util.jar"), "com/example/Util.class")

	f.builder = classpath.NewBuilder(classpath.Options{
		Mode: &classpath.Mode{
			Name:          "java",
			RuntimePaths:  []string{jdk},
			CoreLibraries: []string{f.core},
			LibraryDirs:   []string{f.modeLibs},
		},
		CodeDir:     f.codeDir,
		LibraryDirs: []string{f.userLibs},
	})
	return f
}

func imports(names ...string) []rewrite.Import {
	out := make([]rewrite.Import, len(names))
	for i, n := range names {
		out[i] = rewrite.Import{Name: n}
	}
	return out
}

func TestBuilder_FirstPrepare(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cp, err := f.builder.Prepare(context.Background(), nil, imports("processing.video.*", "java.util.List"))
	require.NoError(t, err)

	video := filepath.Join(f.modeLibs, "video", "library", "video.jar")
	code := filepath.Join(f.codeDir, "util.jar")
	assert.Equal(t, []string{f.runtime, f.core, video, code}, cp.Full())
	assert.Equal(t, []string{f.core, video, code}, cp.Search())
	assert.Equal(t, []string{"video"}, cp.Group(classpath.GroupLibraries).Libraries)
	assert.Equal(t, []string{"com.example"}, cp.CodeFolderPackages())

	idx := cp.Index()
	assert.True(t, idx.HasPackage("java.lang"))
	assert.True(t, idx.HasClass("processing.video.Movie"))
	assert.True(t, idx.HasClass("com.example.Util"))
	assert.False(t, idx.HasPackage("peasy"), "unimported library is not on the classpath")

	for _, kind := range []classpath.GroupKind{
		classpath.GroupRuntime, classpath.GroupCore, classpath.GroupLibraries, classpath.GroupCodeFolder,
	} {
		assert.False(t, f.builder.Dirty(kind), kind.String())
	}
}

func TestBuilder_NothingDirtyReturnsPrevious(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	imps := imports("processing.video.Movie")

	first, err := f.builder.Prepare(ctx, nil, imps)
	require.NoError(t, err)
	second, err := f.builder.Prepare(ctx, first, imps)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, first.Full(), second.Full())
}

func TestBuilder_LibrariesChangedKeepsCodeFolder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	first, err := f.builder.Prepare(ctx, nil, imports("processing.video.*", "peasy.*"))
	require.NoError(t, err)
	assert.Equal(t, []string{"video", "peasycam"}, first.Group(classpath.GroupLibraries).Libraries)

	writeLibrary(t, f.userLibs, "sound", "processing/sound/SinOsc.class")
	f.builder.MarkLibrariesChanged()

	second, err := f.builder.Prepare(ctx, first, imports("processing.video.*", "peasy.*", "processing.sound.*"))
	require.NoError(t, err)

	assert.Same(t, first.Group(classpath.GroupCodeFolder), second.Group(classpath.GroupCodeFolder))
	assert.Same(t, first.Group(classpath.GroupRuntime), second.Group(classpath.GroupRuntime))
	assert.NotSame(t, first.Group(classpath.GroupLibraries), second.Group(classpath.GroupLibraries))
	assert.Equal(t, []string{"video", "peasycam", "sound"}, second.Group(classpath.GroupLibraries).Libraries)
	assert.True(t, second.Index().HasPackage("processing.sound"))
}

func TestBuilder_CodeFolderChangedReusesLibraries(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	imps := imports("processing.video.*", "peasy.PeasyCam")

	first, err := f.builder.Prepare(ctx, nil, imps)
	require.NoError(t, err)

	writeJar(t, filepath.Join(f.codeDir, "extra.jar"), "org/extra/Thing.class")
	f.builder.MarkCodeFolderChanged()
	assert.True(t, f.builder.Dirty(classpath.GroupCodeFolder))
	assert.False(t, f.builder.Dirty(classpath.GroupLibraries))

	second, err := f.builder.Prepare(ctx, first, imps)
	require.NoError(t, err)

	assert.Same(t, first.Group(classpath.GroupLibraries), second.Group(classpath.GroupLibraries))
	assert.Same(t, first.Group(classpath.GroupCore), second.Group(classpath.GroupCore))
	assert.NotSame(t, first.Group(classpath.GroupCodeFolder), second.Group(classpath.GroupCodeFolder))
	assert.Equal(t, []string{"com.example", "org.extra"}, second.CodeFolderPackages())
	assert.True(t, second.Index().HasClass("org.extra.Thing"))
}

func TestBuilder_ImportsChanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	first, err := f.builder.Prepare(ctx, nil, imports("processing.video.*"))
	require.NoError(t, err)

	f.builder.MarkLibraryImportsChanged()
	second, err := f.builder.Prepare(ctx, first, imports("peasy.*"))
	require.NoError(t, err)

	assert.Equal(t, []string{"peasycam"}, second.Group(classpath.GroupLibraries).Libraries)
	assert.Same(t, first.Group(classpath.GroupCodeFolder), second.Group(classpath.GroupCodeFolder))
	assert.False(t, second.Index().HasPackage("processing.video"))
}

func TestBuilder_FirstProviderWins(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	writeLibrary(t, f.userLibs, "video2", "processing/video/Capture.class")

	cp, err := f.builder.Prepare(context.Background(), nil, imports("processing.video.*"))
	require.NoError(t, err)
	assert.Equal(t, []string{"video"}, cp.Group(classpath.GroupLibraries).Libraries)

	libs, err := f.builder.Libraries(context.Background())
	require.NoError(t, err)
	names := make([]string, len(libs))
	for i, lib := range libs {
		names[i] = lib.Name
	}
	assert.Equal(t, []string{"video", "peasycam", "video2"}, names)
}

func TestBuilder_FailureKeepsDirty(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	first, err := f.builder.Prepare(ctx, nil, nil)
	require.NoError(t, err)

	require.NoError(t, writeBroken(filepath.Join(f.codeDir, "broken.jar")))
	f.builder.MarkCodeFolderChanged()

	_, err = f.builder.Prepare(ctx, first, nil)
	require.Error(t, err)
	assert.True(t, f.builder.Dirty(classpath.GroupCodeFolder))
}

func TestBuilder_MissingRuntimeIsSkipped(t *testing.T) {
	t.Parallel()

	b := classpath.NewBuilder(classpath.Options{
		Mode: &classpath.Mode{Name: "java", RuntimePaths: []string{filepath.Join(t.TempDir(), "nope")}},
	})
	cp, err := b.Prepare(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, cp.Full())
	assert.False(t, cp.Index().HasPackage("java.lang"))
}
