// Package runlog appends one JSON line per liberofetch run to a history
// file inside the download directory, so scripts can tell how a run ended
// without parsing console output.
package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Outcome values.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeExhausted = "exhausted"
	OutcomeFatal     = "fatal"
)

// Dir and File locate the history inside a download directory.
const (
	Dir  = ".liberofetch"
	File = "history.jsonl"
)

// Record describes one run.
type Record struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DownloadDir string    `json:"download_dir"`
	Datasets    string    `json:"datasets"`
	Outcome     string    `json:"outcome"`
	Attempts    int       `json:"attempts"`
	Error       string    `json:"error,omitempty"`
	VerifyError string    `json:"verify_error,omitempty"`
}

// New starts a record with a fresh run id.
func New(downloadDir, datasets string) *Record {
	return &Record{
		RunID:       uuid.New().String(),
		StartedAt:   time.Now().UTC(),
		DownloadDir: downloadDir,
		Datasets:    datasets,
	}
}

// Path returns the history file for a download directory.
func Path(downloadDir string) string {
	return filepath.Join(downloadDir, Dir, File)
}

// Append stamps the finish time and appends r to the history of its
// download directory.
func Append(r *Record) error {
	r.FinishedAt = time.Now().UTC()

	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	path := Path(r.DownloadDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}
	return f.Close()
}

// Read returns every record in the history of downloadDir, oldest first.
func Read(downloadDir string) ([]Record, error) {
	f, err := os.Open(Path(downloadDir))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return records, fmt.Errorf("parse %s: %w", Path(downloadDir), err)
		}
		records = append(records, r)
	}
	return records, sc.Err()
}
