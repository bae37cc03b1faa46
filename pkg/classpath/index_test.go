package classpath_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sketchdiag/pkg/classpath"
	"github.com/yaklabco/sketchdiag/pkg/fsutil"
)

func TestScanEntry_Jar(t *testing.T) {
	t.Parallel()

	jar := writeJar(t, filepath.Join(t.TempDir(), "video.jar"),
		"META-INF/MANIFEST.MF",
		"META-INF/versions/9/processing/video/Movie.class",
		"module-info.class",
		"processing/video/",
		"processing/video/Movie.class",
		"processing/video/Movie$Frame.class",
		"processing/video/Movie$1.class",
		"processing/video/package-info.class",
		"processing/video/gst/Pipeline.class",
		"TopLevel.class",
		"readme.txt",
	)

	listing, err := classpath.ScanEntry(context.Background(), jar)
	require.NoError(t, err)

	assert.Equal(t, jar, listing.Path)
	assert.Equal(t, []string{"processing.video", "processing.video.gst"}, listing.Packages)
	assert.Equal(t, []string{
		"TopLevel",
		"processing.video.Movie",
		"processing.video.Movie.Frame",
		"processing.video.gst.Pipeline",
	}, listing.Classes)
}

func TestScanEntry_Jmod(t *testing.T) {
	t.Parallel()

	body := jarBytes(t,
		"classes/java/lang/Object.class",
		"classes/java/lang/String.class",
		"classes/module-info.class",
		"lib/libjava.so",
	)
	jmod := filepath.Join(t.TempDir(), "java.base.jmod")
	require.NoError(t, os.WriteFile(jmod, append([]byte{'J', 'M', 1, 0}, body...), 0o644))

	listing, err := classpath.ScanEntry(context.Background(), jmod)
	require.NoError(t, err)
	assert.Equal(t, []string{"java.lang"}, listing.Packages)
	assert.Equal(t, []string{"java.lang.Object", "java.lang.String"}, listing.Classes)
}

func TestScanEntry_ClassDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mkdir(t, dir, "com", "example")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "com", "example", "Util.class"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "com", "example", "notes.txt"), nil, 0o644))

	listing, err := classpath.ScanEntry(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"com.example"}, listing.Packages)
	assert.Equal(t, []string{"com.example.Util"}, listing.Classes)
}

func TestScanEntry_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := classpath.ScanEntry(context.Background(), filepath.Join(dir, "missing.jar"))
	require.Error(t, err)

	broken := filepath.Join(dir, "broken.jar")
	require.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0o644))
	_, err = classpath.ScanEntry(context.Background(), broken)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = classpath.ScanEntry(ctx, broken)
	require.ErrorIs(t, err, context.Canceled)
}

func TestIndex(t *testing.T) {
	t.Parallel()

	idx := classpath.NewIndex(
		&classpath.Listing{Packages: []string{"java.lang"}, Classes: []string{"java.lang.String"}},
		nil,
		&classpath.Listing{Packages: []string{"java.util"}, Classes: []string{"java.util.Map", "java.util.Map.Entry"}},
	)

	assert.True(t, idx.HasPackage("java.util"))
	assert.False(t, idx.HasPackage("java"))
	assert.True(t, idx.HasClass("java.util.Map.Entry"))
	assert.False(t, idx.HasClass("Map"))
	assert.Equal(t, []string{"java.lang", "java.util"}, idx.Packages())
	assert.Equal(t, 3, idx.ClassCount())

	var empty *classpath.Index
	assert.False(t, empty.HasPackage("java.lang"))
	assert.False(t, empty.HasClass("java.lang.String"))
}

func TestIsArchive(t *testing.T) {
	t.Parallel()

	assert.True(t, classpath.IsArchive("core.jar"))
	assert.True(t, classpath.IsArchive("LIB.ZIP"))
	assert.True(t, classpath.IsArchive("java.base.jmod"))
	assert.False(t, classpath.IsArchive("notes.txt"))
	assert.False(t, classpath.IsArchive("classes"))
}

func TestDiskCache(t *testing.T) {
	t.Parallel()

	cache, err := classpath.OpenDiskCache("sketchdiag", t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	fp := fsutil.Fingerprint{Size: 10, ModTime: 42}
	listing := &classpath.Listing{
		Path:     "/libs/video.jar",
		Packages: []string{"processing.video"},
		Classes:  []string{"processing.video.Movie"},
	}

	_, hit, err := cache.Get(listing.Path, fp)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Put(ctx, fp, listing))

	got, hit, err := cache.Get(listing.Path, fp)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, listing, got)

	_, hit, err = cache.Get(listing.Path, fsutil.Fingerprint{Size: 10, ModTime: 43})
	require.NoError(t, err)
	assert.False(t, hit, "changed mtime must miss")

	require.NoError(t, cache.DropAll())
	_, hit, err = cache.Get(listing.Path, fp)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestScanner_UsesDiskCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache, err := classpath.OpenDiskCache("sketchdiag", t.TempDir())
	require.NoError(t, err)

	jar := writeJar(t, filepath.Join(t.TempDir(), "a.jar"), "a/A.class")
	first, err := classpath.NewScanner(cache, 2, nil).Scan(ctx, []string{jar})
	require.NoError(t, err)

	fp, err := fsutil.FingerprintOf(jar)
	require.NoError(t, err)
	cached, hit, err := cache.Get(jar, fp)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, first[0], cached)

	second, err := classpath.NewScanner(cache, 2, nil).Scan(ctx, []string{jar})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScanner_KeepsOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var jars []string
	for _, name := range []string{"c", "a", "b", "d"} {
		jars = append(jars, writeJar(t, filepath.Join(dir, name+".jar"), name+"/X.class"))
	}

	listings, err := classpath.NewScanner(nil, 3, nil).Scan(context.Background(), jars)
	require.NoError(t, err)
	require.Len(t, listings, 4)
	for i, l := range listings {
		assert.Equal(t, jars[i], l.Path)
	}
}
