package downloader

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInsufficientSpace = errors.New("downloader: insufficient disk space")
	ErrRangeNotSupported = errors.New("downloader: server ignored range request")
	errEmptyURL          = errors.New("downloader: url is empty")
)

// StatusError is returned for non-2xx responses. Status errors count as
// transport failures and are retried by callers.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func newStatusError(resp *http.Response) *StatusError {
	e := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	if resp.Request != nil {
		e.URL = resp.Request.URL.String()
	}
	return e
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %s", e.URL, e.Status)
}

func (e *StatusError) Transient() bool {
	return true
}
