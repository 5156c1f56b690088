package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/schollz/progressbar/v3"
	"github.com/stoewer/go-strcase"
	"golang.org/x/sync/errgroup"
)

// Downloader fetches a single URL into a directory.
type Downloader struct {
	originUrl      string
	filename       string
	rootPath       string
	header         map[string]string
	copyBufferSize int
	client         *http.Client
	url            string
	//file size in bytes, -1 when unknown
	size int64
	//server accepts byte ranges
	resumable bool
	// concurrent ranged parts
	concurrency       int
	inactivityTimeout time.Duration
	skipSpaceCheck    bool
	bar               *progressbar.ProgressBar
	Hook              Hook
	showProgress      bool
	description       string
	logger            retryablehttp.Logger
}

// NewDownloader creates a Downloader for config.Url and fetches the remote
// metadata with a HEAD request.
func NewDownloader(ctx context.Context, config *Config) (*Downloader, error) {
	if config.Concurrency <= 0 {
		config.Concurrency = defaultConcurrency()
	}
	if config.RootPath == "" {
		config.RootPath = "downloads"
	}
	if config.CopyBufferSize <= 0 {
		config.CopyBufferSize = 32 * 1024
	}
	if config.RetryMax == 0 {
		config.RetryMax = 10
	}
	if config.RetryMax < 0 {
		config.RetryMax = 0
	}
	if config.RetryWaitMax == 0 {
		config.RetryWaitMax = 10 * time.Second
	}
	if config.RetryWaitMin == 0 {
		config.RetryWaitMin = 1 * time.Second
	}

	retryablehttpClient := retryablehttp.NewClient()
	retryablehttpClient.RetryMax = config.RetryMax
	retryablehttpClient.RetryWaitMax = config.RetryWaitMax
	retryablehttpClient.RetryWaitMin = config.RetryWaitMin
	var logger retryablehttp.Logger
	switch {
	case config.Logger != nil:
		logger = config.Logger
	case config.Debug:
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	retryablehttpClient.Logger = logger

	d := &Downloader{
		client:            retryablehttpClient.StandardClient(),
		url:               config.Url,
		filename:          config.Filename,
		header:            config.Header,
		concurrency:       config.Concurrency,
		rootPath:          config.RootPath,
		copyBufferSize:    config.CopyBufferSize,
		inactivityTimeout: config.InactivityTimeout,
		skipSpaceCheck:    config.SkipSpaceCheck,
		showProgress:      config.ShowProgress,
		description:       config.Description,
		logger:            logger,
		size:              -1,
	}

	if err := d.fetchMetadata(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Downloader) logf(format string, v ...interface{}) {
	if d.logger != nil {
		d.logger.Printf(format, v...)
	}
}

func (d *Downloader) ensureRootPath() error {
	if err := os.MkdirAll(d.rootPath, 0755); err != nil {
		return fmt.Errorf("create %s: %w", d.rootPath, err)
	}
	return nil
}

// checkFileExist reports whether the target file is already present with
// the remote size.
func (d *Downloader) checkFileExist() bool {
	info, err := os.Stat(d.GetPath())
	if err != nil || d.size < 0 {
		return false
	}
	return info.Size() == d.size
}

func (d *Downloader) fetchMetadata(ctx context.Context) error {
	request, err := d.makeRequest(ctx, http.MethodHead)
	if err != nil {
		return err
	}
	resp, err := d.client.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented:
		// No HEAD support: size unknown, stream the body.
		d.logf("HEAD not supported by %s, falling back to a single stream", d.url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return newStatusError(resp)
	default:
		d.size = resp.ContentLength
		d.resumable = resp.Header.Get("Accept-Ranges") == "bytes" && d.size > 0
	}

	if d.filename == "" {
		d.filename = detectFilename(resp)
	}
	d.originUrl = resp.Request.URL.String()
	return nil
}

// detectFilename picks the name from Content-Disposition, falling back to
// the last URL path element. The stem is snake_cased.
func detectFilename(response *http.Response) string {
	name := ""
	if cd := response.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			name = path.Base(params["filename"])
		}
	}
	if name == "" || name == "." || name == "/" {
		name = path.Base(response.Request.URL.Path)
	}
	ext := path.Ext(name)
	stem := strcase.SnakeCase(strings.TrimSuffix(name, ext))
	if stem == "" || stem == "." || stem == "/" {
		stem = "download"
	}
	return stem + ext
}

// Download fetches the file into the root path. A file already present
// with the remote size is left untouched.
func (d *Downloader) Download(ctx context.Context) error {
	if err := d.ensureRootPath(); err != nil {
		return err
	}

	if d.checkFileExist() {
		d.logf("%s already downloaded", d.GetPath())
		return nil
	}

	if err := d.checkFreeSpace(); err != nil {
		return err
	}

	if d.ranged() {
		err := d.multiDownload(ctx)
		if !errors.Is(err, ErrRangeNotSupported) {
			return err
		}
		d.logf("%v, falling back to a single stream", err)
		d.removeParts()
		d.resumable = false
	}

	return d.simpleDownload(ctx)
}

func (d *Downloader) ranged() bool {
	return d.resumable && d.concurrency > 1 && d.size >= int64(d.concurrency)
}

func (d *Downloader) makeRequest(ctx context.Context, method string) (*http.Request, error) {
	if d.url == "" {
		return nil, errEmptyURL
	}
	req, err := http.NewRequestWithContext(ctx, method, d.url, nil)
	if err != nil {
		return nil, err
	}

	for k, v := range d.header {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (d *Downloader) makeRequestWithRange(ctx context.Context, start, end int64) (*http.Request, error) {
	req, err := d.makeRequest(ctx, http.MethodGet)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))
	return req, nil
}

func (d *Downloader) newBar() *progressbar.ProgressBar {
	desc := d.description
	if desc == "" {
		desc = "Downloading..."
	}
	if d.showProgress {
		return progressbar.DefaultBytes(d.size, desc)
	}
	return progressbar.DefaultBytesSilent(d.size, desc)
}

func (d *Downloader) multiDownload(ctx context.Context) error {
	if err := d.removeStaleParts(); err != nil {
		return err
	}

	d.bar = d.newBar()
	defer d.bar.Finish()

	type byteRange struct{ start, end int64 }
	partSize := d.size / int64(d.concurrency)
	ranges := make([]byteRange, d.concurrency)

	for i := range ranges {
		start := int64(i) * partSize
		end := start + partSize - 1
		if i == d.concurrency-1 {
			end = d.size - 1
		}

		done, err := d.partProgress(i, end-start+1)
		if err != nil {
			return err
		}
		d.bar.Add64(done)
		ranges[i] = byteRange{start + done, end}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		part, r := i, r
		g.Go(func() error {
			return d.partialDownload(gctx, r.start, r.end, part)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return d.merge()
}

// partProgress returns how many bytes of a part survive from an earlier
// run. Oversized parts are discarded.
func (d *Downloader) partProgress(part int, want int64) (int64, error) {
	info, err := os.Stat(d.partPath(part))
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if info.Size() > want {
		if err := os.Remove(d.partPath(part)); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if info.Size() > 0 {
		d.logf("resuming part %d at %d/%d bytes", part, info.Size(), want)
	}
	return info.Size(), nil
}

func (d *Downloader) partialDownload(ctx context.Context, start, end int64, partNumber int) error {
	if start > end {
		return nil
	}

	wctx, wd := newWatchdog(ctx, d.inactivityTimeout)
	defer wd.Cancel()

	request, err := d.makeRequestWithRange(wctx, start, end)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(request)
	if err != nil {
		return wd.explain(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return fmt.Errorf("part %d: %w", partNumber, ErrRangeNotSupported)
	}
	if resp.StatusCode != http.StatusPartialContent {
		return newStatusError(resp)
	}

	f, err := os.OpenFile(d.partPath(partNumber), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := d.copy(f, resp, wd); err != nil {
		return fmt.Errorf("part %d: %w", partNumber, err)
	}
	return nil
}

func (d *Downloader) simpleDownload(ctx context.Context) error {
	wctx, wd := newWatchdog(ctx, d.inactivityTimeout)
	defer wd.Cancel()

	request, err := d.makeRequest(wctx, http.MethodGet)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(request)
	if err != nil {
		return wd.explain(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}
	if d.size < 0 {
		d.size = resp.ContentLength
	}

	tmpPath := d.GetPath() + ".download"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	d.bar = d.newBar()
	defer d.bar.Finish()

	if err := d.copy(f, resp, wd); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return d.commit(tmpPath)
}

// copy streams the response body into dst, feeding the progress bar, the
// hook and the inactivity watchdog.
func (d *Downloader) copy(dst io.Writer, resp *http.Response, wd *watchdog) error {
	out := io.MultiWriter(dst, d.bar)
	buffer := make([]byte, d.copyBufferSize)

	for {
		n, readErr := resp.Body.Read(buffer)
		if n > 0 {
			wd.Kick()
			if _, err := out.Write(buffer[:n]); err != nil {
				return err
			}
			if d.Hook != nil {
				if err := d.Hook(resp, d.bar, nil); err != nil {
					return err
				}
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			if d.Hook != nil {
				_ = d.Hook(resp, d.bar, readErr)
			}
			return wd.explain(readErr)
		}
	}
}

// partPath names part partNum of the current layout. The remote size and
// the part count are part of the name, so parts written for another layout
// are never resumed.
func (d *Downloader) partPath(partNum int) string {
	name := fmt.Sprintf("%s.%d-%dof%d.part", d.filename, d.size, partNum, d.concurrency)
	return filepath.Join(d.rootPath, name)
}

// partFiles lists every part file of the target, whatever its layout.
func (d *Downloader) partFiles() ([]string, error) {
	entries, err := os.ReadDir(d.rootPath)
	if err != nil {
		return nil, err
	}
	var parts []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, d.filename+".") || !strings.HasSuffix(name, ".part") {
			continue
		}
		parts = append(parts, filepath.Join(d.rootPath, name))
	}
	return parts, nil
}

// removeStaleParts deletes part files left by a different layout.
func (d *Downloader) removeStaleParts() error {
	parts, err := d.partFiles()
	if err != nil {
		return err
	}
	current := make(map[string]bool, d.concurrency)
	for i := 0; i < d.concurrency; i++ {
		current[d.partPath(i)] = true
	}
	for _, p := range parts {
		if current[p] {
			continue
		}
		d.logf("discarding stale part %s", filepath.Base(p))
		if err := os.Remove(p); err != nil {
			return err
		}
	}
	return nil
}

func (d *Downloader) removeParts() {
	parts, err := d.partFiles()
	if err != nil {
		d.logf("list parts of %s: %v", d.filename, err)
		return
	}
	for _, p := range parts {
		os.Remove(p)
	}
}

func (d *Downloader) merge() error {
	tmpPath := d.GetPath() + ".download"
	destination, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer destination.Close()

	for i := 0; i < d.concurrency; i++ {
		if err := appendFile(destination, d.partPath(i)); err != nil {
			return err
		}
	}
	if err := destination.Close(); err != nil {
		return err
	}

	if err := d.commit(tmpPath); err != nil {
		return err
	}
	d.removeParts()
	return nil
}

func appendFile(dst io.Writer, name string) error {
	part, err := os.Open(name)
	if err != nil {
		return err
	}
	defer part.Close()

	_, err = io.Copy(dst, part)
	return err
}

// commit checks the size of a finished temporary file and moves it into
// place.
func (d *Downloader) commit(tmpPath string) error {
	info, err := os.Stat(tmpPath)
	if err != nil {
		return err
	}
	if d.size >= 0 && info.Size() != d.size {
		return fmt.Errorf("%s: got %d of %d bytes: %w", d.filename, info.Size(), d.size, io.ErrUnexpectedEOF)
	}
	return os.Rename(tmpPath, d.GetPath())
}

func (d *Downloader) GetFileSize() int64 {
	return d.size
}

func (d *Downloader) GetFilename() string {
	return d.filename
}

func (d *Downloader) GetPath() string {
	return filepath.Join(d.rootPath, d.filename)
}

func (d *Downloader) GetOriginUrl() string {
	return d.originUrl
}

func (d *Downloader) SetHook(hook Hook) {
	d.Hook = hook
}
