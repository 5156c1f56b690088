package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// IsTransient reports whether err is a network failure worth retrying:
// connection resets, transport and URL errors, timeouts, truncated bodies,
// and any error in the chain that declares itself transient through a
// Transient() bool method.
//
// Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var t interface{ Transient() bool }
	if errors.As(err, &t) {
		return t.Transient()
	}

	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	// Covers *url.Error, *net.OpError, *net.DNSError and deadline errors.
	var netErr net.Error
	return errors.As(err, &netErr)
}
