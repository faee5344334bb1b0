//go:build linux

package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Linux VFS magic numbers of network filesystems
var linuxNetworkMagic = map[uint32]string{
	0x6969:     "nfs",
	0xff534d42: "cifs",
	0x517b:     "smb",
	0xfe534d42: "smb2",
	0x564c:     "ncp",
}

var networkFSTypes = []string{"nfs", "cifs", "smb", "ncpfs", "fuse.sshfs", "fuse.rclone"}

func detectPlatformNetwork(path string) (*NetworkInfo, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return nil, fmt.Errorf("failed to stat filesystem: %w", err)
	}

	info := &NetworkInfo{}
	if proto, ok := linuxNetworkMagic[uint32(st.Type)]; ok {
		info.IsNetwork = true
		info.Protocol = proto
	}

	f, err := os.Open("/proc/mounts")
	if err != nil {
		// Magic number is all we have
		return info, nil
	}
	defer f.Close()

	mounts, err := parseMounts(f)
	if err != nil {
		return info, nil
	}

	mountPoint := longestMount(path, mounts)
	if mountPoint == "" {
		return info, nil
	}
	fsType := strings.ToLower(mounts[mountPoint])
	for _, netType := range networkFSTypes {
		if strings.Contains(fsType, netType) {
			info.IsNetwork = true
			info.Protocol = fsType
			info.MountPath = mountPoint
			break
		}
	}
	return info, nil
}

// parseMounts reads /proc/mounts formatted lines into mount point -> fs type
func parseMounts(r io.Reader) (map[string]string, error) {
	mounts := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		// device mountpoint fstype options dump pass
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mounts[fields[1]] = fields[2]
	}
	return mounts, scanner.Err()
}

func longestMount(path string, mounts map[string]string) string {
	best := ""
	for mountPoint := range mounts {
		rel, err := filepath.Rel(mountPoint, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if len(mountPoint) > len(best) {
			best = mountPoint
		}
	}
	return best
}
