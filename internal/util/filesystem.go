package util

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// DiskUsage is the space accounting of the filesystem holding a path
type DiskUsage struct {
	Total     uint64
	Free      uint64
	Available uint64 // free space usable without privileges
}

// UsedPercent is the share of Total not free, 0 for an empty filesystem
func (u DiskUsage) UsedPercent() float64 {
	if u.Total == 0 {
		return 0
	}
	return float64(u.Total-u.Free) / float64(u.Total) * 100
}

// StatDisk reports the disk usage of the filesystem holding path
func StatDisk(path string) (DiskUsage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return DiskUsage{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	bsize := uint64(st.Bsize)
	return DiskUsage{
		Total:     uint64(st.Blocks) * bsize,
		Free:      uint64(st.Bfree) * bsize,
		Available: uint64(st.Bavail) * bsize,
	}, nil
}

func deviceOf(path string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return uint64(st.Dev), nil
}

// IsSameFilesystem reports whether every path lives on the same device.
// A rename across devices fails with EXDEV, which move mode cannot recover
// from.
func IsSameFilesystem(paths ...string) (bool, error) {
	var first uint64
	for i, path := range paths {
		dev, err := deviceOf(filepath.Clean(path))
		if err != nil {
			return false, err
		}
		if i == 0 {
			first = dev
		} else if dev != first {
			return false, nil
		}
	}
	return true, nil
}
