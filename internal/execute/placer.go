package execute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/franz/music-sorter/internal/config"
	"github.com/franz/music-sorter/internal/meta"
	"github.com/franz/music-sorter/internal/plan"
	"github.com/franz/music-sorter/internal/report"
	"github.com/franz/music-sorter/internal/store"
	"github.com/franz/music-sorter/internal/util"
	"github.com/spf13/afero"
)

// Placement actions
const (
	ActionCopy = "copy"
	ActionMove = "move"
)

// PlaceError reports a move that could not be performed
type PlaceError struct {
	Src  string
	Dest string
	Err  error
}

func (e *PlaceError) Error() string {
	return fmt.Sprintf("failed to move %s to %s: %v", e.Src, e.Dest, e.Err)
}

func (e *PlaceError) Unwrap() error {
	return e.Err
}

// Journal records placements
type Journal interface {
	RecordPlacement(p *store.Placement) error
}

// Placement is the outcome of placing one file
type Placement struct {
	Src          string
	Dest         string
	Action       string
	BytesWritten int64
	Err          error // non-fatal copy failure
}

// Failed reports whether the file was left where it was
func (p *Placement) Failed() bool {
	return p.Err != nil
}

// Placer copies or moves files into root/artist/album
type Placer struct {
	fs         afero.Fs
	root       string
	copy       bool
	cache      *DirCache
	retry      *util.RetryConfig
	bufferSize int
	logger     *report.EventLogger
	journal    Journal
	runID      string
}

// Config holds placer configuration
type Config struct {
	Fs         afero.Fs
	Root       string
	Params     config.Params
	Cache      *DirCache         // shared by every placement of the run
	Retry      *util.RetryConfig // nil = single attempt
	BufferSize int               // copy buffer size (0 = use default)
	Logger     *report.EventLogger
	Journal    Journal // optional
	RunID      string
}

// NewPlacer creates a new Placer
func NewPlacer(cfg *Config) *Placer {
	if cfg.Retry == nil {
		cfg.Retry = util.SingleAttempt()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 128 * 1024
	}
	if cfg.Cache == nil {
		cfg.Cache = NewDirCache(cfg.Fs, cfg.Retry, cfg.Logger)
	}

	return &Placer{
		fs:         cfg.Fs,
		root:       cfg.Root,
		copy:       cfg.Params.Copy,
		cache:      cfg.Cache,
		retry:      cfg.Retry,
		bufferSize: cfg.BufferSize,
		logger:     cfg.Logger,
		journal:    cfg.Journal,
		runID:      cfg.RunID,
	}
}

// Place puts the file at src into its destination. A failed copy is reported
// through Placement.Err and leaves the source untouched; a failed directory
// creation or move is returned as an error.
func (p *Placer) Place(ctx context.Context, src string, info *meta.Info) (*Placement, error) {
	layout := plan.Destination(p.root, info)

	if err := p.cache.Ensure(layout.ArtistDir); err != nil {
		return nil, err
	}
	if err := p.cache.Ensure(layout.AlbumDir); err != nil {
		return nil, err
	}

	placement := &Placement{Src: src, Dest: layout.Dest, Action: ActionMove}
	if p.copy {
		placement.Action = ActionCopy
	}

	start := time.Now()
	if p.copy {
		n, err := p.copyFile(ctx, src, layout.Dest)
		placement.BytesWritten = n
		if err != nil {
			util.ErrorLog("Error copying file %s to %s: %v", src, layout.Dest, err)
			placement.Err = err
		}
	} else {
		n, err := p.moveFile(src, layout.Dest)
		placement.BytesWritten = n
		if err != nil {
			placeErr := &PlaceError{Src: src, Dest: layout.Dest, Err: err}
			p.record(placement, time.Since(start), placeErr)
			return nil, placeErr
		}
	}

	p.record(placement, time.Since(start), placement.Err)
	return placement, nil
}

func (p *Placer) record(pl *Placement, duration time.Duration, err error) {
	p.logger.LogPlace(pl.Src, pl.Dest, pl.Action, pl.BytesWritten, duration, err)

	if p.journal == nil {
		return
	}

	entry := &store.Placement{
		RunID:        p.runID,
		SrcPath:      absPath(pl.Src),
		DestPath:     absPath(pl.Dest),
		Action:       pl.Action,
		Status:       store.PlacementPlaced,
		BytesWritten: pl.BytesWritten,
	}
	if err != nil {
		entry.Status = store.PlacementFailed
		entry.Error = err.Error()
	}
	if jerr := p.journal.RecordPlacement(entry); jerr != nil {
		util.WarnLog("Failed to record placement of %s in journal: %v", pl.Src, jerr)
	}
}

// copyFile copies through a .part temporary file renamed over destPath, so an
// existing destination is replaced only by a complete copy
func (p *Placer) copyFile(ctx context.Context, srcPath, destPath string) (int64, error) {
	src, err := util.RetryableOpen(p.fs, srcPath, p.retry)
	if err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	tempPath := destPath + ".part"
	dest, err := util.RetryableCreate(p.fs, tempPath, p.retry)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	bytesWritten, err := copyWithContext(ctx, dest, src, p.bufferSize)
	if cerr := dest.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		p.removeTemp(tempPath)
		return 0, fmt.Errorf("failed to copy: %w", err)
	}

	if stat, err := src.Stat(); err == nil {
		if err := p.fs.Chmod(tempPath, stat.Mode().Perm()); err != nil {
			util.DebugLog("Could not copy permissions to %s: %v", tempPath, err)
		}
	}

	if err := util.RetryableRename(p.fs, tempPath, destPath, p.retry); err != nil {
		p.removeTemp(tempPath)
		return 0, fmt.Errorf("failed to rename: %w", err)
	}

	util.DebugLog("Copied: %s -> %s (%d bytes)", srcPath, destPath, bytesWritten)
	return bytesWritten, nil
}

// absPath makes journal entries independent of the working directory of the
// run that recorded them
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func (p *Placer) removeTemp(tempPath string) {
	if err := util.RetryableRemove(p.fs, tempPath, p.retry); err != nil && !errors.Is(err, os.ErrNotExist) {
		util.DebugLog("Could not remove %s: %v", tempPath, err)
	}
}

// moveFile renames srcPath to destPath. There is no copy fallback across
// filesystems.
func (p *Placer) moveFile(srcPath, destPath string) (int64, error) {
	if err := util.RetryableRename(p.fs, srcPath, destPath, p.retry); err != nil {
		return 0, err
	}

	var size int64
	if stat, err := p.fs.Stat(destPath); err == nil {
		size = stat.Size()
	}

	util.DebugLog("Moved: %s -> %s", srcPath, destPath)
	return size, nil
}

// copyWithContext copies data with context cancellation support
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, bufferSize int) (int64, error) {
	buf := make([]byte, bufferSize)
	var written int64

	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if ew == nil {
					ew = fmt.Errorf("invalid write result")
				}
			}
			written += int64(nw)
			if ew != nil {
				return written, ew
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if er != nil {
			if er != io.EOF {
				return written, er
			}
			break
		}
	}
	return written, nil
}
