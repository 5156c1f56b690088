package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mdsohelmia/liberofetch/internal/config"
	"github.com/mdsohelmia/liberofetch/pkg/dataset"
	"github.com/mdsohelmia/liberofetch/pkg/retry"
)

// parseArgs resolves the run configuration from defaults, an optional YAML
// file, LIBERO_* environment variables and flags, in that order.
func parseArgs(args []string, stderr io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("liberofetch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "YAML configuration file")
	downloadDir := fs.String("download-dir", "", "Destination directory (default: the LIBERO datasets path)")
	selector := dataset.All
	fs.Var(&selector, "datasets", "Datasets to download: "+selectorChoices())
	maxRetries := fs.Int("max-retries", retry.DefaultMaxRetries, "Download attempts before giving up")
	concurrency := fs.Int("concurrency", 0, "Parallel ranged parts per archive, 0 for the number of CPUs")
	keepArchives := fs.Bool("keep-archives", false, "Keep zip archives after extraction")
	noProgress := fs.Bool("no-progress", false, "Disable progress bars")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	var waitTime, inactivity time.Duration
	fs.Func("wait-time", "Delay between download attempts, e.g. 10s (default 10s)", func(s string) error {
		d, err := config.ParseDuration(s)
		if err != nil {
			return err
		}
		if d < 0 {
			return errors.New("must not be negative")
		}
		waitTime = d
		return nil
	})
	fs.Func("inactivity-timeout", "Abort an attempt after this long without data, e.g. 2m (default off)", func(s string) error {
		d, err := config.ParseDuration(s)
		if err != nil {
			return err
		}
		inactivity = d
		return nil
	})

	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), `Usage: liberofetch [options]

Download the LIBERO benchmark datasets, retrying on transient network
errors, then check that every dataset is complete.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return config.Config{}, errors.New("unexpected arguments")
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(*configFile); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return config.Config{}, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return config.Config{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg = cfg.Merge(config.Config{DownloadDir: *downloadDir})

	// Explicit flags win even when they carry a zero value.
	if set["datasets"] {
		cfg.Datasets = selector.String()
	}
	if set["max-retries"] {
		cfg.Retry.MaxRetries = *maxRetries
	}
	if set["concurrency"] {
		cfg.Concurrency = *concurrency
	}
	if set["keep-archives"] {
		cfg.KeepArchives = *keepArchives
	}
	if set["verbose"] {
		cfg.Verbose = *verbose
	}
	if set["no-progress"] {
		cfg.Progress = !*noProgress
	}
	if set["wait-time"] {
		cfg.Retry.WaitTime = waitTime
	}
	if set["inactivity-timeout"] {
		cfg.HTTP.InactivityTimeout = inactivity
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = config.DefaultDatasetPath()
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return config.Config{}, err
	}
	return cfg, nil
}

func selectorChoices() string {
	names := make([]string, 0, len(dataset.Selectors()))
	for _, s := range dataset.Selectors() {
		names = append(names, s.String())
	}
	return strings.Join(names, "|")
}
