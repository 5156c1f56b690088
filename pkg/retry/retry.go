// Package retry runs an operation a bounded number of times with a fixed
// delay between attempts, retrying only transient network errors.
package retry

import (
	"context"
	"time"
)

const (
	DefaultMaxRetries = 5
	DefaultWaitTime   = 10 * time.Second
)

// Status is the outcome of a retry loop that did not fail fatally.
type Status int

const (
	Succeeded Status = iota
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result describes how a call to Do ended.
type Result struct {
	Status   Status
	Attempts int
	// LastErr is the last transient error seen, nil on success.
	LastErr error
}

// Operation is a single attempt.
type Operation func(ctx context.Context) error

// Logger is the subset of the application logger used to report attempts.
type Logger interface {
	Infof(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Options configures Do.
type Options struct {
	// MaxRetries is the total number of attempts.
	// Default: 5
	MaxRetries int

	// WaitTime is the constant delay between attempts.
	// Default: 10s
	WaitTime time.Duration

	// Sleep waits between attempts. Default: a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// IsTransient decides whether an error is retried. Default: IsTransient.
	IsTransient func(error) bool

	Logger Logger
}

// Do calls op until it succeeds, fails with a non-transient error, or
// MaxRetries transient failures have accumulated. Exhausting the retries is
// not an error: the returned Result carries Status Exhausted.
func Do(ctx context.Context, op Operation, opts Options) (Result, error) {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.WaitTime < 0 {
		opts.WaitTime = 0
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.IsTransient == nil {
		opts.IsTransient = IsTransient
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	var res Result
	for res.Attempts < opts.MaxRetries {
		res.Attempts++

		err := op(ctx)
		if err == nil {
			opts.Logger.Infof("Download successful.")
			res.Status = Succeeded
			res.LastErr = nil
			return res, nil
		}
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if !opts.IsTransient(err) {
			return res, err
		}

		res.LastErr = err
		opts.Logger.Errorf("Error: %v", err)
		opts.Logger.Infof("Retrying %d/%d after %s...", res.Attempts, opts.MaxRetries, opts.WaitTime)
		// No sleep after the last attempt.
		if res.Attempts == opts.MaxRetries {
			break
		}
		if err := opts.Sleep(ctx, opts.WaitTime); err != nil {
			return res, err
		}
	}

	opts.Logger.Errorf("Failed to download after %d retries.", opts.MaxRetries)
	res.Status = Exhausted
	return res, nil
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
