package runlog

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRead(t *testing.T) {
	dir := t.TempDir()

	first := New(dir, "libero_goal")
	first.Outcome = OutcomeExhausted
	first.Attempts = 5
	first.Error = "connection reset by peer"
	require.NoError(t, Append(first))

	second := New(dir, "all")
	second.Outcome = OutcomeSucceeded
	second.Attempts = 1
	second.VerifyError = "datasets incomplete: libero_90"
	require.NoError(t, Append(second))

	records, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, first.RunID, records[0].RunID)
	require.Equal(t, OutcomeExhausted, records[0].Outcome)
	require.Equal(t, 5, records[0].Attempts)
	require.Equal(t, "connection reset by peer", records[0].Error)
	require.False(t, records[0].FinishedAt.Before(records[0].StartedAt))

	require.Equal(t, "all", records[1].Datasets)
	require.Equal(t, "datasets incomplete: libero_90", records[1].VerifyError)
	require.NotEqual(t, records[0].RunID, records[1].RunID)

	_, err = uuid.Parse(records[1].RunID)
	require.NoError(t, err)
}

func TestReadMissing(t *testing.T) {
	_, err := Read(t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}
