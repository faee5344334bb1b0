//go:build !linux && !darwin

package util

import "os"

// Without mount introspection every existing path counts as local
func detectPlatformNetwork(path string) (*NetworkInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return &NetworkInfo{}, nil
}
