package classpath_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeJar writes a zip holding empty files with the given names.
func writeJar(t *testing.T, path string, names ...string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, jarBytes(t, names...), 0o644))
	return path
}

func jarBytes(t *testing.T, names ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		_, err := w.Create(name)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	dir := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

// writeLibrary lays out <dir>/<name>/library/<name>.jar.
func writeLibrary(t *testing.T, dir, name string, classes ...string) string {
	t.Helper()
	libDir := mkdir(t, dir, name, "library")
	return writeJar(t, filepath.Join(libDir, name+".jar"), classes...)
}

func writeBroken(path string) error {
	return os.WriteFile(path, []byte("not a zip"), 0o644)
}
