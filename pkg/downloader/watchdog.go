package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// watchdog cancels its context when Kick has not been called for timeout.
type watchdog struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	timer   *time.Timer
	timeout time.Duration
}

func newWatchdog(parent context.Context, timeout time.Duration) (context.Context, *watchdog) {
	ctx, cancel := context.WithCancelCause(parent)
	wd := &watchdog{ctx: ctx, cancel: cancel, timeout: timeout}
	if timeout > 0 {
		wd.timer = time.AfterFunc(timeout, func() {
			cancel(os.ErrDeadlineExceeded)
		})
	}
	return ctx, wd
}

func (wd *watchdog) Kick() {
	if wd.timer != nil {
		wd.timer.Reset(wd.timeout)
	}
}

func (wd *watchdog) Cancel() {
	if wd.timer != nil {
		wd.timer.Stop()
	}
	wd.cancel(nil)
}

// explain replaces a read error caused by the watchdog firing with a timeout
// error that names the inactivity window.
func (wd *watchdog) explain(err error) error {
	if cause := context.Cause(wd.ctx); errors.Is(cause, os.ErrDeadlineExceeded) {
		return fmt.Errorf("no data received for %s: %w", wd.timeout, cause)
	}
	return err
}
