package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"github.com/k0kubun/pp"

	"github.com/mdsohelmia/liberofetch/internal/config"
	"github.com/mdsohelmia/liberofetch/internal/logger"
	"github.com/mdsohelmia/liberofetch/internal/runlog"
	"github.com/mdsohelmia/liberofetch/pkg/dataset"
	"github.com/mdsohelmia/liberofetch/pkg/downloader"
	"github.com/mdsohelmia/liberofetch/pkg/retry"
)

type downloadFunc func(ctx context.Context, dir string, sel dataset.Selector) error

type verifyFunc func(dir string) error

// app wires the resolver, the retrying downloader and the verifier. The
// collaborator fields are nil in production and replaced in tests.
type app struct {
	stdout io.Writer
	stderr io.Writer

	download downloadFunc
	verify   verifyFunc
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, now: time.Now}
}

func (a *app) run(ctx context.Context, args []string) int {
	cfg, err := parseArgs(args, a.stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		return ExitInvalidArgs
	}

	log := logger.New(a.stdout, a.stdout, cfg.Verbose)
	log.Debugf("configuration: %s", pp.Sprint(cfg))

	sel, _ := dataset.ParseSelector(cfg.Datasets)
	dir := cfg.DownloadDir

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Errorf("Cannot create download directory: %v", err)
		return ExitGeneralError
	}
	log.Infof("Datasets downloaded to %s", dir)
	log.Infof("Downloading %s datasets", sel)
	log.Infof("Runtime: %s", a.now().Format("2006-01-02 15:04:05"))

	download := a.download
	if download == nil {
		fetcher, err := newFetcher(cfg, log)
		if err != nil {
			log.Errorf("%v", err)
			return ExitGeneralError
		}
		download = fetcher.Download
	}
	verify := a.verify
	if verify == nil {
		verify = func(dir string) error {
			_, err := dataset.Check(dir, log)
			return err
		}
	}

	rec := runlog.New(dir, sel.String())

	res, err := retry.Do(ctx, func(ctx context.Context) error {
		return download(ctx, dir, sel)
	}, retry.Options{
		MaxRetries: cfg.Retry.MaxRetries,
		WaitTime:   cfg.Retry.WaitTime,
		Sleep:      a.sleep,
		Logger:     log,
	})
	rec.Attempts = res.Attempts
	if err != nil {
		log.Errorf("Download failed: %v", err)
		rec.Outcome = runlog.OutcomeFatal
		rec.Error = err.Error()
		a.record(log, rec)
		return ExitGeneralError
	}

	switch res.Status {
	case retry.Succeeded:
		rec.Outcome = runlog.OutcomeSucceeded
	case retry.Exhausted:
		rec.Outcome = runlog.OutcomeExhausted
		rec.Error = res.LastErr.Error()
	}

	if err := verify(dir); err != nil {
		log.Errorf("Error checking datasets: %v", err)
		rec.VerifyError = err.Error()
	}

	a.record(log, rec)
	return ExitSuccess
}

func (a *app) record(log *logger.Logger, rec *runlog.Record) {
	if err := runlog.Append(rec); err != nil {
		log.Debugf("run history not written: %v", err)
		return
	}
	log.Debugf("run %s recorded in %s", rec.RunID, runlog.Path(rec.DownloadDir))
}

func newFetcher(cfg config.Config, log *logger.Logger) (*dataset.Fetcher, error) {
	catalog, err := dataset.DefaultCatalog().With(cfg.Sources)
	if err != nil {
		return nil, err
	}

	return dataset.NewFetcher(catalog, dataset.FetchOptions{
		Download: downloader.Config{
			ShowProgress:      cfg.Progress,
			Concurrency:       cfg.Concurrency,
			CopyBufferSize:    int(cfg.CopyBufferSize),
			RetryMax:          cfg.HTTP.RetryMax,
			RetryWaitMin:      cfg.HTTP.RetryWaitMin,
			RetryWaitMax:      cfg.HTTP.RetryWaitMax,
			InactivityTimeout: cfg.HTTP.InactivityTimeout,
			Logger:            log,
		},
		KeepArchives: cfg.KeepArchives,
		Logger:       log,
	}), nil
}
