package util

import (
	"fmt"
	"path/filepath"
)

// NetworkInfo describes the mount a path lives on
type NetworkInfo struct {
	IsNetwork bool
	Protocol  string // nfs, cifs, smbfs... empty when local
	MountPath string // mount point, when the platform reports it
}

// DetectNetworkFilesystem reports whether path is on a network mount. The
// path must exist.
func DetectNetworkFilesystem(path string) (*NetworkInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	return detectPlatformNetwork(absPath)
}
