package tools

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// DiskUsage is the capacity of the volume holding a path.
type DiskUsage struct {
	Path  string
	Total uint64
	Free  uint64
}

func (d DiskUsage) String() string {
	used := d.Total - d.Free
	pct := 0.0
	if d.Total > 0 {
		pct = float64(used) / float64(d.Total) * 100
	}
	return fmt.Sprintf("Disk %s:\n  Total: %s\n  Used:  %s (%.1f%%)\n  Free:  %s",
		d.Path,
		humanize.Bytes(d.Total),
		humanize.Bytes(used), pct,
		humanize.Bytes(d.Free),
	)
}

func unsupportedDisk(goos string) string {
	return fmt.Sprintf("Disk space check is unsupported on this platform (%s).", goos)
}
