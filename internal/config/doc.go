// Package config defines configuration for the liberofetch CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (LIBERO_ prefix)
//   - YAML configuration file
//
// Later sources win: defaults, then the file, then the environment, then
// flags. Durations accept Go syntax ("10s", "1m30s") or a bare number of
// seconds; byte sizes accept units ("32KB", "1MB").
//
// # File format
//
//	download_dir: /data/libero
//	datasets: libero_goal
//	concurrency: 8
//	copy_buffer_size: 64KB
//	progress: true
//	keep_archives: false
//	retry:
//	  max_retries: 5
//	  wait_time: 10s
//	http:
//	  retry_max: 2
//	  retry_wait_min: 1s
//	  retry_wait_max: 10s
//	  inactivity_timeout: 2m
//	sources:
//	  libero_goal: https://mirror.example.com/libero_goal.zip
package config
