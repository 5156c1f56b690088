package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := New(&out, &errOut, false)
	l.SetFlags(0)

	l.Infof("hello %s", "world")
	l.Errorf("broken: %d", 42)
	l.Debugf("hidden")
	l.Printf("hidden too")

	require.Equal(t, "[INFO]  hello world\n", out.String())
	require.Equal(t, "[ERROR] broken: 42\n", errOut.String())
}

func TestVerbose(t *testing.T) {
	var out bytes.Buffer
	l := New(&out, &out, false)
	l.SetFlags(0)
	require.False(t, l.IsVerbose())

	l.SetVerbose(true)
	require.True(t, l.IsVerbose())
	l.Debugf("shown")
	l.Printf("[DEBUG] GET %s", "http://example.com")

	require.Equal(t, "[DEBUG] shown\n[DEBUG] [DEBUG] GET http://example.com\n", out.String())
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.SetVerbose(true)
	l.Infof("nothing")
	l.Errorf("nothing")
	l.Debugf("nothing")
}
