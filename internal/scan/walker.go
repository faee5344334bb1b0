package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/franz/music-sorter/internal/config"
	"github.com/franz/music-sorter/internal/execute"
	"github.com/franz/music-sorter/internal/meta"
	"github.com/franz/music-sorter/internal/report"
	"github.com/franz/music-sorter/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
)

// Walker lists a directory, extracts an Info for every file and hands it to
// the Placer. Processing is sequential in name order.
type Walker struct {
	fs        afero.Fs
	params    config.Params
	extractor *meta.Extractor
	placer    *execute.Placer
	out       io.Writer
	logger    *report.EventLogger
	summary   *report.Summary
	bar       *progressbar.ProgressBar
}

// Config holds walker configuration
type Config struct {
	Fs        afero.Fs
	Params    config.Params
	Extractor *meta.Extractor
	Placer    *execute.Placer
	Out       io.Writer // informational channel (nil = stdout)
	Logger    *report.EventLogger
	Summary   *report.Summary // nil = counters are discarded
	Progress  bool            // show a spinner on stderr
}

// New creates a new Walker
func New(cfg *Config) *Walker {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Summary == nil {
		cfg.Summary = report.NewSummary("")
	}

	w := &Walker{
		fs:        cfg.Fs,
		params:    cfg.Params,
		extractor: cfg.Extractor,
		placer:    cfg.Placer,
		out:       cfg.Out,
		logger:    cfg.Logger,
		summary:   cfg.Summary,
	}

	if cfg.Progress {
		w.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Sorting"),
			progressbar.OptionSetWidth(min(40, util.GetTerminalWidth()/2)),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSpinnerType(14),
		)
	}

	return w
}

// Walk processes dir and, when Recursive is set, its subdirectories. The
// walk stops at the first fatal error or when ctx is cancelled.
func (w *Walker) Walk(ctx context.Context, dir string) error {
	err := w.walkDir(ctx, dir)
	if w.bar != nil {
		w.bar.Finish()
	}
	return err
}

func (w *Walker) walkDir(ctx context.Context, dir string) error {
	util.InfoLog("Processing files in directory %s", dir)
	w.logger.LogScan(dir, w.params.Recursive)
	w.summary.DirsScanned++

	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, entry.Name())

		// Stat follows symlinks
		info, err := w.fs.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if info.IsDir() {
			if w.params.Recursive {
				if err := w.walkDir(ctx, path); err != nil {
					return err
				}
				continue
			}
			util.InfoLog("Skipping directory %s", path)
			w.logger.LogSkip(path, "directory")
			w.summary.DirsSkipped++
			continue
		}

		if err := w.processFile(ctx, path, entry.Name()); err != nil {
			return err
		}
	}

	return nil
}

func (w *Walker) processFile(ctx context.Context, path, name string) error {
	w.summary.FilesSeen++
	if w.bar != nil {
		w.bar.Add(1)
	}

	if w.params.Metadata {
		util.InfoLog("Working %s", path)
	}

	info, err := w.extractor.Extract(path, name)
	if err != nil {
		var skip *meta.SkipError
		if errors.As(err, &skip) {
			util.WarnLog("%s", skip.Reason)
			w.logger.LogSkip(path, skip.Reason)
			w.summary.FilesSkipped++
			return nil
		}
		w.logger.LogError(report.EventError, path, err)
		return err
	}

	if info.Ext == "" {
		reason := fmt.Sprintf("Extension not found for file %s", path)
		util.WarnLog("%s", reason)
		w.logger.LogSkip(path, reason)
		w.summary.FilesSkipped++
		return nil
	}

	printInfo(w.out, name, info)

	placement, err := w.placer.Place(ctx, path, info)
	if err != nil {
		return err
	}
	if placement.Failed() {
		w.summary.RecordFailure(placement.Err)
		return nil
	}

	w.summary.FilesPlaced++
	w.summary.BytesWritten += placement.BytesWritten
	return nil
}

func printInfo(out io.Writer, filename string, info *meta.Info) {
	fmt.Fprintf(out, "Filename : %s\n", filename)
	fmt.Fprintf(out, "Artist   : %s\n", info.Artist)
	fmt.Fprintf(out, "Album    : %s\n", info.Album)
	fmt.Fprintf(out, "Track    : %s\n", info.Track)
	fmt.Fprintf(out, "Song     : %s\n", info.Song)
	fmt.Fprintf(out, "Extension: %s\n\n", info.Ext)
}
