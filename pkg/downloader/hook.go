package downloader

import (
	"net/http"

	"github.com/schollz/progressbar/v3"
)

// Hook is called after every chunk copied from a response body, and once
// more with the read error if the copy fails. A non-nil return aborts the
// download.
type Hook func(resp *http.Response, progressbar *progressbar.ProgressBar, err error) error
