package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsSameFilesystem(t *testing.T) {
	tmpDir := t.TempDir()
	sub := filepath.Join(tmpDir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	same, err := IsSameFilesystem(tmpDir, sub)
	if err != nil {
		t.Fatalf("IsSameFilesystem failed: %v", err)
	}
	if !same {
		t.Error("Expected a directory and its child to share a filesystem")
	}
}

func TestIsSameFilesystemMissingPath(t *testing.T) {
	tmpDir := t.TempDir()
	if _, err := IsSameFilesystem(tmpDir, filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("Expected error for missing path")
	}
}

func TestIsSameFilesystemSinglePath(t *testing.T) {
	same, err := IsSameFilesystem(t.TempDir())
	if err != nil || !same {
		t.Errorf("IsSameFilesystem(single) = %v, %v; expected true", same, err)
	}
}

func TestStatDisk(t *testing.T) {
	usage, err := StatDisk(t.TempDir())
	if err != nil {
		t.Fatalf("StatDisk failed: %v", err)
	}
	if usage.Total == 0 {
		t.Error("Expected a non-zero filesystem size")
	}
	if usage.Available > usage.Total || usage.Free > usage.Total {
		t.Errorf("Inconsistent usage: %+v", usage)
	}
	if p := usage.UsedPercent(); p < 0 || p > 100 {
		t.Errorf("UsedPercent out of range: %f", p)
	}

	if _, err := StatDisk(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing path")
	}
}

func TestUsedPercentEmpty(t *testing.T) {
	if p := (DiskUsage{}).UsedPercent(); p != 0 {
		t.Errorf("UsedPercent of empty usage = %f, expected 0", p)
	}
}
