package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Infof(format string, v ...interface{}) {
	l.infos = append(l.infos, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Errorf(format string, v ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Debugf(string, ...interface{}) {}

func populate(t *testing.T, dir, name string, n int) {
	d := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(d, 0755))
	for i := 0; i < n; i++ {
		p := filepath.Join(d, fmt.Sprintf("task_%02d_demo.hdf5", i))
		require.NoError(t, os.WriteFile(p, []byte("demo"), 0644))
	}
}

func populateAll(t *testing.T, dir string) {
	for _, l := range Layouts() {
		populate(t, dir, l.Name, l.Files)
	}
}

func TestCheckComplete(t *testing.T) {
	dir := t.TempDir()
	populateAll(t, dir)

	log := &recordingLogger{}
	report, err := Check(dir, log)
	require.NoError(t, err)
	require.Len(t, report, 5)
	require.Empty(t, report.Incomplete())
	require.Contains(t, log.infos, "[X] libero_90: complete (90 files)")
}

func TestCheckIncomplete(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir, "libero_goal", 10)
	populate(t, dir, "libero_90", 42)
	// Non-demo files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "libero_90", "notes.txt"), nil, 0644))

	log := &recordingLogger{}
	report, err := Check(dir, log)
	require.ErrorIs(t, err, ErrIncomplete)
	require.Equal(t, []string{"libero_object", "libero_spatial", "libero_10", "libero_90"}, report.Incomplete())
	require.Contains(t, err.Error(), "libero_object, libero_spatial, libero_10, libero_90")

	require.Contains(t, log.infos, "[X] libero_goal: complete (10 files)")
	require.Contains(t, log.infos, "[ ] libero_90: incomplete (42/90 files)")
	require.Contains(t, log.infos, "[ ] libero_object: not found")
}

func TestCheckMissingDirectory(t *testing.T) {
	_, err := Check(filepath.Join(t.TempDir(), "nope"), &recordingLogger{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckNotADirectory(t *testing.T) {
	p := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(p, nil, 0644))
	_, err := Check(p, &recordingLogger{})
	require.Error(t, err)
}

func TestLayoutsFor(t *testing.T) {
	ls := LayoutsFor("libero_100")
	require.Len(t, ls, 2)
	require.Equal(t, "libero_10", ls[0].Name)
	require.Equal(t, "libero_90", ls[1].Name)
	require.Empty(t, LayoutsFor("unknown"))
}

func TestArchiveComplete(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir, "libero_10", 10)
	require.False(t, archiveComplete(dir, "libero_100"))

	populate(t, dir, "libero_90", 90)
	require.True(t, archiveComplete(dir, "libero_100"))
	require.False(t, archiveComplete(dir, "unknown"))
}
