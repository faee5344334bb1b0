package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSummaryTopErrors(t *testing.T) {
	s := NewSummary(testRunID)
	s.RecordFailure(errors.New("disk full"))
	s.RecordFailure(errors.New("permission denied"))
	s.RecordFailure(errors.New("disk full"))

	if s.CopyFailures != 3 {
		t.Errorf("Expected 3 copy failures, got %d", s.CopyFailures)
	}

	top := s.TopErrors(10)
	if len(top) != 2 {
		t.Fatalf("Expected 2 distinct errors, got %d", len(top))
	}
	if top[0].Error != "disk full" || top[0].Count != 2 {
		t.Errorf("Unexpected top error: %+v", top[0])
	}

	if got := s.TopErrors(1); len(got) != 1 {
		t.Errorf("Expected limit to apply, got %d entries", len(got))
	}
}

func TestSummaryPrint(t *testing.T) {
	s := NewSummary(testRunID)
	s.Mode = "copy"
	s.FilesSeen = 4
	s.FilesPlaced = 3
	s.FilesSkipped = 1
	s.DirsCreated = 2
	s.BytesWritten = 3 * 1000 * 1000
	s.Finish()

	var buf bytes.Buffer
	s.Print(&buf)
	out := buf.String()

	for _, want := range []string{"Sorted 3 of 4 files", "3.0 MB", "copy", "dirs created: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "copy failures") {
		t.Error("Copy failures line should be omitted when there are none")
	}
}

func TestWriteMarkdownReport(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "reports", "summary.md")

	s := NewSummary(testRunID)
	s.InputDir = "/in"
	s.OutputDir = "/out"
	s.Mode = "move"
	s.Strategy = "filename"
	s.FilesSeen = 100
	s.FilesPlaced = 95
	s.FilesSkipped = 5
	s.DirsCreated = 12
	s.BytesWritten = 500 * 1000 * 1000
	s.Duration = 90 * time.Second
	s.JournalPath = "/test/journal.db"
	s.RecordFailure(errors.New("Error copying file /in/a.mp3 to /out/A/B/1 a.mp3"))

	if err := WriteMarkdownReport(s, outputPath); err != nil {
		t.Fatalf("WriteMarkdownReport failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	md := string(content)

	expected := []string{
		"# Music Sorter - Run Report",
		"## Parameters",
		"| Strategy | filename |",
		"## Overview",
		"| Files Placed | 95 |",
		"| Copy Failures | 1 |",
		"500 MB",
		"## Top Errors",
		"/test/journal.db",
		testRunID,
	}
	for _, want := range expected {
		if !strings.Contains(md, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestTruncatePath(t *testing.T) {
	testCases := []struct {
		path   string
		maxLen int
	}{
		{"/short/path.mp3", 50},
		{"/very/long/path/to/some/music/file/that/exceeds/limit.mp3", 30},
		{"/a/b", 4},
	}

	for _, tc := range testCases {
		result := truncatePath(tc.path, tc.maxLen)

		if len(result) > tc.maxLen {
			t.Errorf("Result length %d exceeds maxLen %d", len(result), tc.maxLen)
		}
		if len(tc.path) > tc.maxLen && !strings.Contains(result, "...") {
			t.Error("Expected truncated path to contain '...'")
		}
		if len(tc.path) <= tc.maxLen && result != tc.path {
			t.Errorf("Short path should not be truncated: expected '%s', got '%s'", tc.path, result)
		}
	}
}
