package downloader

import (
	"fmt"
	"runtime"

	"github.com/inhies/go-bytesize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
)

// FormatBytes renders n as a human readable size.
func FormatBytes(n int64) string {
	return bytesize.ByteSize(n).String()
}

func defaultConcurrency() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// checkFreeSpace fails with ErrInsufficientSpace when the root path cannot
// hold the download. Ranged downloads need room for the parts and the merged
// file at the same time.
func (d *Downloader) checkFreeSpace() error {
	if d.skipSpaceCheck || d.size <= 0 {
		return nil
	}

	usage, err := disk.Usage(d.rootPath)
	if err != nil {
		d.logf("skipping free space check for %s: %v", d.rootPath, err)
		return nil
	}

	required := uint64(d.size)
	if d.ranged() {
		required *= 2
	}
	if usage.Free < required {
		return fmt.Errorf("%w: %s needs %s, %s free in %s", ErrInsufficientSpace,
			d.filename, FormatBytes(int64(required)), FormatBytes(int64(usage.Free)), d.rootPath)
	}
	return nil
}
