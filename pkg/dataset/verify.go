package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrIncomplete is returned by Check when at least one dataset is missing
// demonstration files.
var ErrIncomplete = errors.New("datasets incomplete")

// Layout is a dataset directory and the number of demonstration files it
// holds when complete.
type Layout struct {
	Name    string
	Archive string
	Files   int
}

var layouts = []Layout{
	{Name: "libero_object", Archive: string(Object), Files: 10},
	{Name: "libero_goal", Archive: string(Goal), Files: 10},
	{Name: "libero_spatial", Archive: string(Spatial), Files: 10},
	{Name: "libero_10", Archive: string(Libero100), Files: 10},
	{Name: "libero_90", Archive: string(Libero100), Files: 90},
}

// Layouts returns every known dataset layout.
func Layouts() []Layout {
	return append([]Layout(nil), layouts...)
}

// LayoutsFor returns the layouts an archive unpacks into.
func LayoutsFor(archive string) []Layout {
	var out []Layout
	for _, l := range layouts {
		if l.Archive == archive {
			out = append(out, l)
		}
	}
	return out
}

// Status is the on-disk state of one dataset.
type Status struct {
	Layout
	Found bool
	Count int
}

func (s Status) Complete() bool {
	return s.Found && s.Count >= s.Files
}

func (s Status) String() string {
	switch {
	case s.Complete():
		return fmt.Sprintf("[X] %s: complete (%d files)", s.Name, s.Count)
	case s.Found:
		return fmt.Sprintf("[ ] %s: incomplete (%d/%d files)", s.Name, s.Count, s.Files)
	default:
		return fmt.Sprintf("[ ] %s: not found", s.Name)
	}
}

// Report holds the status of every dataset in a directory.
type Report []Status

// Incomplete returns the names of datasets that are not complete.
func (r Report) Incomplete() []string {
	var names []string
	for _, s := range r {
		if !s.Complete() {
			names = append(names, s.Name)
		}
	}
	return names
}

// Inspect reads the state of every known dataset under dir.
func Inspect(dir string) (Report, error) {
	return inspect(dir, layouts)
}

func inspect(dir string, ls []Layout) (Report, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("download directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("download directory %s is not a directory", dir)
	}

	report := make(Report, 0, len(ls))
	for _, l := range ls {
		s := Status{Layout: l}
		entries, err := os.ReadDir(filepath.Join(dir, l.Name))
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			s.Found = true
			for _, e := range entries {
				if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".hdf5") {
					s.Count++
				}
			}
		}
		report = append(report, s)
	}
	return report, nil
}

// Check inspects dir, logs one line per dataset and returns ErrIncomplete
// naming every dataset that is not complete.
func Check(dir string, log Logger) (Report, error) {
	report, err := Inspect(dir)
	if err != nil {
		return nil, err
	}
	for _, s := range report {
		log.Infof("%s", s)
	}
	if missing := report.Incomplete(); len(missing) > 0 {
		return report, fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return report, nil
}

// archiveComplete reports whether every dataset an archive produces is
// already present in dir.
func archiveComplete(dir, archive string) bool {
	ls := LayoutsFor(archive)
	if len(ls) == 0 {
		return false
	}
	report, err := inspect(dir, ls)
	return err == nil && len(report.Incomplete()) == 0
}
