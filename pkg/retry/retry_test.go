package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
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

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

func resetErr() error {
	return &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}
}

func TestAlwaysTransientExhausts(t *testing.T) {
	calls := 0
	sleeper := &sleepRecorder{}
	log := &recordingLogger{}

	res, err := Do(context.Background(), func(context.Context) error {
		calls++
		return resetErr()
	}, Options{MaxRetries: 5, WaitTime: 10 * time.Second, Sleep: sleeper.sleep, Logger: log})

	require.NoError(t, err)
	require.Equal(t, 5, calls)
	require.Equal(t, Exhausted, res.Status)
	require.Equal(t, 5, res.Attempts)
	require.Error(t, res.LastErr)

	require.Len(t, sleeper.calls, 4)
	for _, d := range sleeper.calls {
		require.Equal(t, 10*time.Second, d)
	}

	require.Contains(t, log.errors, "Failed to download after 5 retries.")
	require.Contains(t, log.infos, "Retrying 1/5 after 10s...")
	require.NotContains(t, log.infos, "Download successful.")

	// Every transient failure reports the error and the count.
	require.Len(t, log.errors, 6)
	require.Len(t, log.infos, 5)
	require.Equal(t, "Retrying 5/5 after 10s...", log.infos[4])
}

func TestSucceedsOnKthAttempt(t *testing.T) {
	for k := 1; k <= 5; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			calls := 0
			sleeper := &sleepRecorder{}
			log := &recordingLogger{}

			res, err := Do(context.Background(), func(context.Context) error {
				calls++
				if calls < k {
					return &url.Error{Op: "Get", URL: "https://example.com", Err: io.EOF}
				}
				return nil
			}, Options{MaxRetries: 5, WaitTime: time.Second, Sleep: sleeper.sleep, Logger: log})

			require.NoError(t, err)
			require.Equal(t, k, calls)
			require.Equal(t, Succeeded, res.Status)
			require.Equal(t, k, res.Attempts)
			require.NoError(t, res.LastErr)
			require.Len(t, sleeper.calls, k-1)
			require.Contains(t, log.infos, "Download successful.")
		})
	}
}

func TestNonTransientPropagates(t *testing.T) {
	calls := 0
	sleeper := &sleepRecorder{}
	fatal := errors.New("zip: not a valid zip file")

	res, err := Do(context.Background(), func(context.Context) error {
		calls++
		return fatal
	}, Options{MaxRetries: 5, Sleep: sleeper.sleep})

	require.ErrorIs(t, err, fatal)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, res.Attempts)
	require.Empty(t, sleeper.calls)
}

func TestCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return resetErr()
	}, Options{MaxRetries: 5, WaitTime: time.Hour})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestDefaults(t *testing.T) {
	calls := 0
	sleeper := &sleepRecorder{}

	res, err := Do(context.Background(), func(context.Context) error {
		calls++
		return io.ErrUnexpectedEOF
	}, Options{Sleep: sleeper.sleep})

	require.NoError(t, err)
	require.Equal(t, DefaultMaxRetries, calls)
	require.Equal(t, Exhausted, res.Status)
	require.Len(t, sleeper.calls, DefaultMaxRetries-1)
	require.Equal(t, DefaultWaitTime, sleeper.calls[0])
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

type flaggedErr struct{ transient bool }

func (e flaggedErr) Error() string   { return "flagged" }
func (e flaggedErr) Transient() bool { return e.transient }

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection reset", resetErr(), true},
		{"wrapped reset", fmt.Errorf("libero_goal: %w", syscall.ECONNRESET), true},
		{"url error", &url.Error{Op: "Get", URL: "https://example.com", Err: errors.New("giving up")}, true},
		{"timeout", os.ErrDeadlineExceeded, true},
		{"truncated body", fmt.Errorf("copy: %w", io.ErrUnexpectedEOF), true},
		{"flagged transient", fmt.Errorf("head: %w", flaggedErr{true}), true},
		{"flagged permanent", flaggedErr{false}, false},
		{"cancelled", fmt.Errorf("get: %w", context.Canceled), false},
		{"plain", errors.New("boom"), false},
		{"path error", &os.PathError{Op: "open", Path: "/x", Err: os.ErrPermission}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "exhausted", Exhausted.String())
	assert.Equal(t, "unknown", Status(7).String())
}
