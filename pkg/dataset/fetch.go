package dataset

import (
	"context"
	"fmt"
	"os"

	"github.com/mdsohelmia/liberofetch/pkg/archive"
	"github.com/mdsohelmia/liberofetch/pkg/downloader"
)

// Logger is the logging surface the package needs.
type Logger interface {
	Infof(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// FetchOptions configures a Fetcher.
type FetchOptions struct {
	// Download is the template for every archive download. Url, RootPath,
	// Filename and Description are filled in per archive.
	Download downloader.Config

	// KeepArchives keeps the zip files after extraction.
	KeepArchives bool

	Logger Logger
}

// Fetcher downloads and unpacks dataset archives.
type Fetcher struct {
	catalog Catalog
	opts    FetchOptions
}

func NewFetcher(catalog Catalog, opts FetchOptions) *Fetcher {
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Fetcher{catalog: catalog, opts: opts}
}

// Download fetches every archive the selector covers into dir. Archives
// whose datasets are already complete are skipped. Errors keep their cause
// in the chain so callers can classify them.
func (f *Fetcher) Download(ctx context.Context, dir string, sel Selector) error {
	for _, name := range sel.Archives() {
		if err := f.fetchArchive(ctx, dir, name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func (f *Fetcher) fetchArchive(ctx context.Context, dir, name string) error {
	log := f.opts.Logger

	if archiveComplete(dir, name) {
		log.Infof("%s already present, skipping", name)
		return nil
	}

	url, err := f.catalog.URL(name)
	if err != nil {
		return err
	}
	log.Infof("Downloading %s", name)
	log.Debugf("%s source: %s", name, url)

	cfg := f.opts.Download
	cfg.Url = url
	cfg.RootPath = dir
	cfg.Filename = name + ".zip"
	cfg.Description = name

	d, err := downloader.NewDownloader(ctx, &cfg)
	if err != nil {
		return err
	}
	if d.GetFileSize() > 0 {
		log.Debugf("%s resolved to %s (%s)", name, d.GetOriginUrl(), downloader.FormatBytes(d.GetFileSize()))
	}
	if err := d.Download(ctx); err != nil {
		return err
	}

	n, err := archive.Extract(ctx, d.GetPath(), dir)
	if err != nil {
		// A broken archive is fetched again on the next run.
		if rmErr := os.Remove(d.GetPath()); rmErr != nil {
			log.Errorf("remove %s: %v", d.GetPath(), rmErr)
		}
		return err
	}
	log.Infof("Extracted %d files from %s", n, d.GetFilename())

	if !f.opts.KeepArchives {
		if err := os.Remove(d.GetPath()); err != nil {
			log.Errorf("remove %s: %v", d.GetPath(), err)
		}
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}
