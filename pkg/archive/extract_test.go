package archive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "libero_100.zip")
	writeZip(t, src, map[string]string{
		"libero_10/":                  "",
		"libero_10/a_demo.hdf5":       "a",
		"libero_90/b_demo.hdf5":       "b",
		"__MACOSX/libero_10/._a.hdf5": "junk",
		"libero_90/.DS_Store":         "junk",
	})

	n, err := Extract(context.Background(), src, dir)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := os.ReadFile(filepath.Join(dir, "libero_10", "a_demo.hdf5"))
	require.NoError(t, err)
	require.Equal(t, "a", string(got))
	require.FileExists(t, filepath.Join(dir, "libero_90", "b_demo.hdf5"))
	require.NoDirExists(t, filepath.Join(dir, "__MACOSX"))
	require.NoFileExists(t, filepath.Join(dir, "libero_90", ".DS_Store"))
}

func TestExtractRejectsEscape(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.zip")
	writeZip(t, src, map[string]string{"../escaped.txt": "x"})

	dest := filepath.Join(dir, "out")
	_, err := Extract(context.Background(), src, dest)
	require.ErrorIs(t, err, ErrUnsafePath)
	require.NoFileExists(t, filepath.Join(dir, "escaped.txt"))
}

func TestExtractNotAZip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.zip")
	require.NoError(t, os.WriteFile(src, []byte("<html>not a zip</html>"), 0644))

	_, err := Extract(context.Background(), src, dir)
	require.ErrorIs(t, err, zip.ErrFormat)
}

func TestExtractCancelled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.zip")
	writeZip(t, src, map[string]string{"a.hdf5": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extract(ctx, src, dir)
	require.ErrorIs(t, err, context.Canceled)
}
