//go:build windows

package tools

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

func (t *Toolbox) diskSpace() (string, error) {
	root := `C:\`
	if wd, err := os.Getwd(); err == nil {
		if vol := filepath.VolumeName(wd); vol != "" {
			root = vol + `\`
		}
	}

	ptr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return "", err
	}

	var free, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(ptr, &free, &total, &totalFree); err != nil {
		return "", err
	}

	return DiskUsage{Path: root, Total: total, Free: totalFree}.String(), nil
}
