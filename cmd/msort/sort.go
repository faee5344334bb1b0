package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/franz/music-sorter/internal/config"
	"github.com/franz/music-sorter/internal/execute"
	"github.com/franz/music-sorter/internal/meta"
	"github.com/franz/music-sorter/internal/report"
	"github.com/franz/music-sorter/internal/scan"
	"github.com/franz/music-sorter/internal/store"
	"github.com/franz/music-sorter/internal/util"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runSort(cmd *cobra.Command, args []string) error {
	if cmd.Flags().NFlag() == 0 {
		cmd.Help()
		return errUsage
	}

	opts, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	util.SetVerbose(opts.Verbose)
	util.SetQuiet(opts.Quiet)

	runID := uuid.NewString()
	fsys := afero.NewOsFs()

	util.DebugLog("Run %s: %s -> %s (copy=%t metadata=%t recursive=%t)", runID,
		opts.InputDir, opts.OutputDir, opts.Params.Copy, opts.Params.Metadata, opts.Params.Recursive)

	retry := util.TuneRetries(opts.OutputDir, opts.NASMode, opts.Retries)

	if !opts.Params.Copy {
		if same, err := util.IsSameFilesystem(opts.InputDir, opts.OutputDir); err == nil && !same {
			util.WarnLog("Input and output are on different filesystems: moves will fail, consider --copy")
		}
	}

	// Event log
	logger := report.NullLogger()
	if opts.EventsDir != "" {
		logLevel := report.LevelInfo
		if util.IsQuiet() {
			logLevel = report.LevelWarning
		} else if util.IsVerbose() {
			logLevel = report.LevelDebug
		}

		logger, err = report.NewEventLogger(opts.EventsDir, runID, logLevel)
		if err != nil {
			util.WarnLog("Failed to create event logger: %v", err)
			logger = report.NullLogger()
		}
		defer logger.Close()

		if logger.Path() != "" {
			util.InfoLog("Event log: %s", logger.Path())
		}
	}

	summary := report.NewSummary(runID)
	summary.InputDir = opts.InputDir
	summary.OutputDir = opts.OutputDir
	summary.Mode = modeName(opts.Params)
	summary.Strategy = strategyName(opts.Params)
	summary.EventLogPath = logger.Path()

	// Journal
	var journal execute.Journal
	var db *store.Store
	if opts.Journal != "" {
		lock := flock.New(opts.Journal + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("failed to lock journal: %w", err)
		}
		if !locked {
			return fmt.Errorf("journal %s is in use by another run", opts.Journal)
		}
		defer lock.Unlock()

		db, err = openJournal(opts.Journal)
		if err != nil {
			return err
		}
		defer db.Close()

		err = db.StartRun(&store.Run{
			ID:        runID,
			StartedAt: summary.StartedAt,
			InputDir:  opts.InputDir,
			OutputDir: opts.OutputDir,
			Mode:      summary.Mode,
			Strategy:  summary.Strategy,
		})
		if err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		journal = db
		summary.JournalPath = opts.Journal
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := execute.NewDirCache(fsys, retry, logger)
	walker := scan.New(&scan.Config{
		Fs:     fsys,
		Params: opts.Params,
		Extractor: meta.New(&meta.Config{
			Params:         opts.Params,
			Reader:         newTagReader(opts.TagBackend, fsys),
			Sanitize:       opts.Sanitize,
			ASCII:          opts.ASCII,
			SkipUnreadable: opts.SkipUnreadable,
		}),
		Placer: execute.NewPlacer(&execute.Config{
			Fs:      fsys,
			Root:    opts.OutputDir,
			Params:  opts.Params,
			Cache:   cache,
			Retry:   retry,
			Logger:  logger,
			Journal: journal,
			RunID:   runID,
		}),
		Out:      os.Stdout,
		Logger:   logger,
		Summary:  summary,
		Progress: util.IsQuiet() && util.IsTerminal(os.Stderr.Fd()),
	})

	walkErr := walker.Walk(ctx, opts.InputDir)

	summary.DirsCreated = cache.Created()
	summary.Finish()

	status := store.RunCompleted
	switch {
	case errors.Is(walkErr, context.Canceled):
		status = store.RunInterrupted
	case walkErr != nil:
		status = store.RunFailed
	}

	if db != nil {
		if err := db.FinishRun(runID, status, summary.FilesPlaced, summary.CopyFailures, summary.FilesSkipped); err != nil {
			util.WarnLog("Failed to update journal: %v", err)
		}
	}

	if !util.IsQuiet() {
		summary.Print(os.Stderr)
	}

	if opts.Report != "" {
		if err := report.WriteMarkdownReport(summary, opts.Report); err != nil {
			util.WarnLog("Failed to write run report: %v", err)
		} else {
			util.SuccessLog("Run report saved to: %s", opts.Report)
		}
	}

	if status == store.RunInterrupted {
		return fmt.Errorf("interrupted after %d files", summary.FilesSeen)
	}
	return walkErr
}

func newTagReader(backend string, fsys afero.Fs) meta.TagReader {
	if backend == config.BackendGeneric {
		return meta.NewGenericReader(fsys)
	}
	return meta.NewNativeReader(fsys)
}

// openJournal opens the journal with network pragmas when it lives on a NAS
func openJournal(path string) (*store.Store, error) {
	networkOptimized := false
	if info, err := util.DetectNetworkFilesystem(filepath.Dir(path)); err == nil && info.IsNetwork {
		networkOptimized = true
	}

	db, err := store.OpenWithOptions(path, &store.OpenOptions{NetworkOptimized: networkOptimized})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return db, nil
}

func modeName(p config.Params) string {
	if p.Copy {
		return execute.ActionCopy
	}
	return execute.ActionMove
}

func strategyName(p config.Params) string {
	if p.Metadata {
		return "metadata"
	}
	return "filename"
}
