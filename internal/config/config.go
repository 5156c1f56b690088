package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/mdsohelmia/liberofetch/pkg/dataset"
	"github.com/mdsohelmia/liberofetch/pkg/retry"
)

// MaxCopyBufferSize caps the per-transfer read buffer.
const MaxCopyBufferSize = 64 * 1024 * 1024

// Config defines configuration for the liberofetch CLI.
type Config struct {
	DownloadDir    string
	Datasets       string
	Concurrency    int
	CopyBufferSize int64
	Progress       bool
	KeepArchives   bool
	Verbose        bool
	Retry          RetryConfig
	HTTP           HTTPConfig
	// Sources overrides archive URLs by archive name.
	Sources map[string]string
}

// RetryConfig controls the run-level retry loop around the whole download.
type RetryConfig struct {
	MaxRetries int
	WaitTime   time.Duration
}

// HTTPConfig controls request-level retries inside a single attempt.
type HTTPConfig struct {
	RetryMax          int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	InactivityTimeout time.Duration
}

// Default returns a Config with sensible defaults. DownloadDir is left
// empty; callers resolve it with DefaultDatasetPath.
func Default() Config {
	return Config{
		Datasets:       string(dataset.All),
		CopyBufferSize: 32 * 1024,
		Progress:       true,
		Retry: RetryConfig{
			MaxRetries: retry.DefaultMaxRetries,
			WaitTime:   retry.DefaultWaitTime,
		},
		HTTP: HTTPConfig{
			RetryMax:     2,
			RetryWaitMin: time.Second,
			RetryWaitMax: 10 * time.Second,
		},
	}
}

// yamlConfig mirrors Config with string durations and sizes.
type yamlConfig struct {
	DownloadDir    string            `yaml:"download_dir"`
	Datasets       string            `yaml:"datasets"`
	Concurrency    int               `yaml:"concurrency"`
	CopyBufferSize string            `yaml:"copy_buffer_size"`
	Progress       *bool             `yaml:"progress"`
	KeepArchives   *bool             `yaml:"keep_archives"`
	Verbose        *bool             `yaml:"verbose"`
	Retry          yamlRetryConfig   `yaml:"retry"`
	HTTP           yamlHTTPConfig    `yaml:"http"`
	Sources        map[string]string `yaml:"sources"`
}

type yamlRetryConfig struct {
	MaxRetries int    `yaml:"max_retries"`
	WaitTime   string `yaml:"wait_time"`
}

type yamlHTTPConfig struct {
	RetryMax          int    `yaml:"retry_max"`
	RetryWaitMin      string `yaml:"retry_wait_min"`
	RetryWaitMax      string `yaml:"retry_wait_max"`
	InactivityTimeout string `yaml:"inactivity_timeout"`
}

// LoadFromFile loads configuration from a YAML file on top of Default.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.DownloadDir != "" {
		cfg.DownloadDir = yc.DownloadDir
	}
	if yc.Datasets != "" {
		cfg.Datasets = yc.Datasets
	}
	if yc.Concurrency != 0 {
		cfg.Concurrency = yc.Concurrency
	}
	if yc.CopyBufferSize != "" {
		size, err := ParseBytes(yc.CopyBufferSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse copy_buffer_size: %w", err)
		}
		cfg.CopyBufferSize = size
	}
	if yc.Progress != nil {
		cfg.Progress = *yc.Progress
	}
	if yc.KeepArchives != nil {
		cfg.KeepArchives = *yc.KeepArchives
	}
	if yc.Verbose != nil {
		cfg.Verbose = *yc.Verbose
	}
	if yc.Retry.MaxRetries != 0 {
		cfg.Retry.MaxRetries = yc.Retry.MaxRetries
	}
	if yc.HTTP.RetryMax != 0 {
		cfg.HTTP.RetryMax = yc.HTTP.RetryMax
	}
	if len(yc.Sources) > 0 {
		cfg.Sources = yc.Sources
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"retry.wait_time", yc.Retry.WaitTime, &cfg.Retry.WaitTime},
		{"http.retry_wait_min", yc.HTTP.RetryWaitMin, &cfg.HTTP.RetryWaitMin},
		{"http.retry_wait_max", yc.HTTP.RetryWaitMax, &cfg.HTTP.RetryWaitMax},
		{"http.inactivity_timeout", yc.HTTP.InactivityTimeout, &cfg.HTTP.InactivityTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the LIBERO_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("LIBERO_DOWNLOAD_DIR"); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv("LIBERO_DATASETS"); v != "" {
		c.Datasets = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"LIBERO_CONCURRENCY", &c.Concurrency},
		{"LIBERO_MAX_RETRIES", &c.Retry.MaxRetries},
		{"LIBERO_HTTP_RETRY_MAX", &c.HTTP.RetryMax},
	}
	for _, e := range ints {
		if v := os.Getenv(e.name); v != "" {
			n, err := cast.ToIntE(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", e.name, err)
			}
			*e.dst = n
		}
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"LIBERO_PROGRESS", &c.Progress},
		{"LIBERO_KEEP_ARCHIVES", &c.KeepArchives},
		{"LIBERO_VERBOSE", &c.Verbose},
	}
	for _, e := range bools {
		if v := os.Getenv(e.name); v != "" {
			b, err := cast.ToBoolE(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", e.name, err)
			}
			*e.dst = b
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"LIBERO_WAIT_TIME", &c.Retry.WaitTime},
		{"LIBERO_HTTP_RETRY_WAIT_MIN", &c.HTTP.RetryWaitMin},
		{"LIBERO_HTTP_RETRY_WAIT_MAX", &c.HTTP.RetryWaitMax},
		{"LIBERO_INACTIVITY_TIMEOUT", &c.HTTP.InactivityTimeout},
	}
	for _, e := range durations {
		if v := os.Getenv(e.name); v != "" {
			d, err := ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", e.name, err)
			}
			*e.dst = d
		}
	}

	if v := os.Getenv("LIBERO_COPY_BUFFER_SIZE"); v != "" {
		size, err := ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse LIBERO_COPY_BUFFER_SIZE: %w", err)
		}
		c.CopyBufferSize = size
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DownloadDir == "" {
		return errors.New("config: download_dir is required")
	}
	if _, err := dataset.ParseSelector(c.Datasets); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Retry.MaxRetries <= 0 {
		return errors.New("config: max_retries must be positive")
	}
	if c.Retry.WaitTime < 0 {
		return errors.New("config: wait_time must not be negative")
	}
	if c.Concurrency < 0 {
		return errors.New("config: concurrency must not be negative")
	}
	if c.CopyBufferSize <= 0 || c.CopyBufferSize > MaxCopyBufferSize {
		return fmt.Errorf("config: copy_buffer_size must be between 1B and %s", bytesize.ByteSize(MaxCopyBufferSize))
	}
	if c.HTTP.InactivityTimeout < 0 {
		return errors.New("config: inactivity_timeout must not be negative")
	}
	if _, err := dataset.DefaultCatalog().With(c.Sources); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.DownloadDir != "" {
		c.DownloadDir = override.DownloadDir
	}
	if override.Datasets != "" {
		c.Datasets = override.Datasets
	}
	if override.Concurrency != 0 {
		c.Concurrency = override.Concurrency
	}
	if override.CopyBufferSize != 0 {
		c.CopyBufferSize = override.CopyBufferSize
	}
	if override.KeepArchives {
		c.KeepArchives = override.KeepArchives
	}
	if override.Verbose {
		c.Verbose = override.Verbose
	}
	if override.Retry.MaxRetries != 0 {
		c.Retry.MaxRetries = override.Retry.MaxRetries
	}
	if override.Retry.WaitTime != 0 {
		c.Retry.WaitTime = override.Retry.WaitTime
	}
	if override.HTTP.RetryMax != 0 {
		c.HTTP.RetryMax = override.HTTP.RetryMax
	}
	if override.HTTP.RetryWaitMin != 0 {
		c.HTTP.RetryWaitMin = override.HTTP.RetryWaitMin
	}
	if override.HTTP.RetryWaitMax != 0 {
		c.HTTP.RetryWaitMax = override.HTTP.RetryWaitMax
	}
	if override.HTTP.InactivityTimeout != 0 {
		c.HTTP.InactivityTimeout = override.HTTP.InactivityTimeout
	}
	if len(override.Sources) > 0 {
		c.Sources = override.Sources
	}
	return c
}

// ParseDuration accepts Go duration syntax or a bare number of seconds.
func ParseDuration(s string) (time.Duration, error) {
	if n, err := cast.ToFloat64E(s); err == nil {
		return time.Duration(n * float64(time.Second)), nil
	}
	return cast.ToDurationE(s)
}

// ParseBytes parses a human readable size such as "64KB" or "1MB".
func ParseBytes(s string) (int64, error) {
	b, err := bytesize.Parse(s)
	if err != nil {
		return 0, err
	}
	return int64(b), nil
}
