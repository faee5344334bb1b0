package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/franz/music-sorter/internal/store"
	"github.com/franz/music-sorter/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that a sort can run with the current configuration",
	Long: `Run diagnostic checks before sorting.

This command checks:
- SQLite availability and the journal, when one is configured
- The input directory is readable
- The output directory exists and is writable (msort creates one level
  of directories at a time, so the output root must already exist)
- Whether input and output share a filesystem (required for moves)
- Network filesystems and free disk space on the output`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringP("dir", "d", "", "input directory to check (default is the working directory)")
	doctorCmd.Flags().StringP("out", "o", "", "output directory to check (default is the working directory)")
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))

	util.InfoLog("=== msort doctor ===")

	srcPath := doctorPath(cmd, "dir")
	destPath := doctorPath(cmd, "out")

	results := []checkResult{checkSQLite()}
	if dbPath := viper.GetString("journal"); dbPath != "" {
		results = append(results, checkJournal(dbPath))
	}
	results = append(results,
		checkSourceDirectory(srcPath),
		checkDestinationDirectory(destPath),
		checkSameFilesystem(srcPath, destPath),
		checkNetwork(destPath),
		checkDiskSpace(destPath, "output"),
	)

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	if hasErrors {
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings. Review them before sorting.")
	} else {
		util.SuccessLog("All checks passed")
	}

	return nil
}

func doctorPath(cmd *cobra.Command, name string) string {
	if p, _ := cmd.Flags().GetString(name); p != "" {
		return p
	}
	if p := viper.GetString(name); p != "" {
		return p
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkJournal verifies the journal can be opened and is intact
func checkJournal(dbPath string) checkResult {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Journal",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Journal",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Journal",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Journal",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Journal",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	runs, _ := db.ListRuns(0)
	return checkResult{
		name:    "Journal",
		message: fmt.Sprintf("%s (%s, %d runs)", dbPath, humanize.Bytes(uint64(info.Size())), len(runs)),
	}
}

// checkSourceDirectory verifies the input directory is readable
func checkSourceDirectory(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		return checkResult{
			name:    "Input directory",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Input directory",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return checkResult{
			name:    "Input directory",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	return checkResult{
		name:    "Input directory",
		message: fmt.Sprintf("%s (%d entries)", path, len(entries)),
	}
}

// checkDestinationDirectory verifies the output directory exists and is
// writable. It is never created here.
func checkDestinationDirectory(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		return checkResult{
			name:    "Output directory",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Output directory",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	testFile := filepath.Join(path, ".msort_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Output directory",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Output directory",
		message: fmt.Sprintf("%s (writable)", path),
	}
}

// checkSameFilesystem warns when moves would cross a device boundary
func checkSameFilesystem(src, dest string) checkResult {
	same, err := util.IsSameFilesystem(src, dest)
	if err != nil {
		return checkResult{
			name:    "Same filesystem",
			warning: true,
			message: fmt.Sprintf("cannot compare %s and %s: %v", src, dest, err),
		}
	}
	if !same {
		return checkResult{
			name:    "Same filesystem",
			warning: true,
			message: "input and output are on different filesystems, use --copy",
		}
	}
	return checkResult{
		name:    "Same filesystem",
		message: "moves are plain renames",
	}
}

// checkNetwork reports whether the output lives on a network filesystem
func checkNetwork(path string) checkResult {
	info, err := util.DetectNetworkFilesystem(path)
	if err != nil {
		return checkResult{
			name:    "Network filesystem",
			warning: true,
			message: fmt.Sprintf("cannot detect filesystem type: %v", err),
		}
	}
	if info.IsNetwork {
		return checkResult{
			name:    "Network filesystem",
			message: fmt.Sprintf("output is on %s (%s), transient errors will be retried", info.Protocol, info.MountPath),
		}
	}
	return checkResult{
		name:    "Network filesystem",
		message: "output is local",
	}
}

// checkDiskSpace verifies available disk space
func checkDiskSpace(path string, label string) checkResult {
	usage, err := util.StatDisk(path)
	if err != nil {
		return checkResult{
			name:    fmt.Sprintf("Disk space (%s)", label),
			warning: true,
			message: fmt.Sprintf("cannot determine disk space: %v", err),
		}
	}
	availBytes := usage.Available
	usedPercent := usage.UsedPercent()

	// Warn below 1GB free or above 95% used
	warning := false
	warningMsg := ""
	if availBytes < 1<<30 {
		warning = true
		warningMsg = " (low space!)"
	} else if usedPercent > 95 {
		warning = true
		warningMsg = " (>95% used)"
	}

	return checkResult{
		name:    fmt.Sprintf("Disk space (%s)", label),
		warning: warning,
		message: fmt.Sprintf("%s available%s", humanize.IBytes(availBytes), warningMsg),
	}
}
