package downloader

import (
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type Config struct {
	Url string
	// Filename overrides the name detected from the response.
	Filename       string
	Header         map[string]string
	ShowProgress   bool
	Description    string // progress bar label
	Concurrency    int
	RootPath       string
	CopyBufferSize int
	RetryWaitMin   time.Duration // Minimum time to wait
	RetryWaitMax   time.Duration // Maximum time to wait
	RetryMax       int           // Maximum number of retries, negative disables
	// InactivityTimeout aborts a transfer that received no data for this
	// long. Zero disables the watchdog.
	InactivityTimeout time.Duration
	// SkipSpaceCheck disables the free disk space check before downloading.
	SkipSpaceCheck bool
	Logger         retryablehttp.Logger
	Debug          bool
}
