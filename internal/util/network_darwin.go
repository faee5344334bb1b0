//go:build darwin

package util

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

var darwinNetworkTypes = []string{"nfs", "smbfs", "afpfs", "cifs", "webdav", "osxfuse"}

func detectPlatformNetwork(path string) (*NetworkInfo, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return nil, fmt.Errorf("failed to stat filesystem: %w", err)
	}

	fsType := strings.ToLower(unix.ByteSliceToString(st.Fstypename[:]))
	for _, netType := range darwinNetworkTypes {
		if strings.Contains(fsType, netType) {
			return &NetworkInfo{
				IsNetwork: true,
				Protocol:  fsType,
				MountPath: unix.ByteSliceToString(st.Mntonname[:]),
			}, nil
		}
	}
	return &NetworkInfo{}, nil
}
