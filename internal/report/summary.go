package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Summary collects the counters of one sorting run
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	// Walk statistics
	DirsScanned  int
	DirsSkipped  int
	FilesSeen    int
	FilesSkipped int

	// Placement statistics
	FilesPlaced  int
	CopyFailures int
	DirsCreated  int
	BytesWritten int64

	// Details
	failures map[string]int

	// Run parameters
	InputDir     string
	OutputDir    string
	Mode         string // copy or move
	Strategy     string // metadata or filename
	EventLogPath string
	JournalPath  string
}

// ErrorSummary represents an error with its count
type ErrorSummary struct {
	Error string
	Count int
}

// NewSummary creates an empty summary stamped with the current time
func NewSummary(runID string) *Summary {
	return &Summary{
		RunID:     runID,
		StartedAt: time.Now(),
		failures:  make(map[string]int),
	}
}

// RecordFailure counts a non-fatal placement failure
func (s *Summary) RecordFailure(err error) {
	s.CopyFailures++
	if s.failures == nil {
		s.failures = make(map[string]int)
	}
	s.failures[err.Error()]++
}

// Finish stamps the run duration
func (s *Summary) Finish() {
	s.Duration = time.Since(s.StartedAt)
}

// TopErrors returns the most common failures, most frequent first
func (s *Summary) TopErrors(limit int) []ErrorSummary {
	errors := make([]ErrorSummary, 0, len(s.failures))
	for err, count := range s.failures {
		errors = append(errors, ErrorSummary{Error: err, Count: count})
	}

	sort.Slice(errors, func(i, j int) bool {
		if errors[i].Count != errors[j].Count {
			return errors[i].Count > errors[j].Count
		}
		return errors[i].Error < errors[j].Error
	})

	if len(errors) > limit {
		errors = errors[:limit]
	}
	return errors
}

// Print writes a short human-readable summary
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Sorted %d of %d files (%s %s) in %s\n",
		s.FilesPlaced, s.FilesSeen, humanize.Bytes(uint64(s.BytesWritten)), s.Mode,
		s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  skipped files: %d, skipped dirs: %d, dirs created: %d\n",
		s.FilesSkipped, s.DirsSkipped, s.DirsCreated)
	if s.CopyFailures > 0 {
		fmt.Fprintf(w, "  copy failures: %d\n", s.CopyFailures)
	}
}

// WriteMarkdownReport writes the summary as Markdown
func WriteMarkdownReport(s *Summary, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var md strings.Builder

	md.WriteString("# Music Sorter - Run Report\n\n")
	md.WriteString(fmt.Sprintf("**Started:** %s (%s)\n\n",
		s.StartedAt.Format("2006-01-02 15:04:05"), humanize.Time(s.StartedAt)))
	if s.RunID != "" {
		md.WriteString(fmt.Sprintf("**Run:** `%s`\n\n", s.RunID))
	}
	if s.JournalPath != "" {
		md.WriteString(fmt.Sprintf("**Journal:** `%s`\n\n", s.JournalPath))
	}
	if s.EventLogPath != "" {
		md.WriteString(fmt.Sprintf("**Event Log:** `%s`\n\n", s.EventLogPath))
	}

	md.WriteString("---\n\n")

	md.WriteString("## Parameters\n\n")
	md.WriteString("| Setting | Value |\n")
	md.WriteString("|---------|-------|\n")
	md.WriteString(fmt.Sprintf("| Input | `%s` |\n", s.InputDir))
	md.WriteString(fmt.Sprintf("| Output | `%s` |\n", s.OutputDir))
	md.WriteString(fmt.Sprintf("| Mode | %s |\n", s.Mode))
	md.WriteString(fmt.Sprintf("| Strategy | %s |\n", s.Strategy))
	md.WriteString("\n")

	md.WriteString("## Overview\n\n")
	md.WriteString("| Metric | Value |\n")
	md.WriteString("|--------|-------|\n")
	md.WriteString(fmt.Sprintf("| Directories Scanned | %s |\n", humanize.Comma(int64(s.DirsScanned))))
	md.WriteString(fmt.Sprintf("| Files Seen | %s |\n", humanize.Comma(int64(s.FilesSeen))))
	md.WriteString(fmt.Sprintf("| Files Placed | %s |\n", humanize.Comma(int64(s.FilesPlaced))))
	md.WriteString(fmt.Sprintf("| Files Skipped | %s |\n", humanize.Comma(int64(s.FilesSkipped))))
	if s.DirsSkipped > 0 {
		md.WriteString(fmt.Sprintf("| Directories Skipped | %d |\n", s.DirsSkipped))
	}
	md.WriteString(fmt.Sprintf("| Directories Created | %d |\n", s.DirsCreated))
	if s.CopyFailures > 0 {
		md.WriteString(fmt.Sprintf("| Copy Failures | %d |\n", s.CopyFailures))
	}
	md.WriteString(fmt.Sprintf("| Bytes Written | %s |\n", humanize.Bytes(uint64(s.BytesWritten))))
	if s.Duration > 0 {
		md.WriteString(fmt.Sprintf("| Duration | %s |\n", s.Duration.Round(time.Second)))
	}
	md.WriteString("\n")

	if top := s.TopErrors(10); len(top) > 0 {
		md.WriteString("## Top Errors\n\n")
		md.WriteString("| Count | Error |\n")
		md.WriteString("|-------|-------|\n")
		for _, err := range top {
			md.WriteString(fmt.Sprintf("| %d | %s |\n", err.Count, truncatePath(err.Error, 120)))
		}
		md.WriteString("\n")
	}

	if err := os.WriteFile(outputPath, []byte(md.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// truncatePath truncates a file path to a maximum length
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	// Keep the start and the end
	start := maxLen/2 - 2
	end := len(path) - (maxLen/2 - 2)
	return path[:start] + "..." + path[end:]
}
