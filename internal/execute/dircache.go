package execute

import (
	"fmt"

	"github.com/franz/music-sorter/internal/report"
	"github.com/franz/music-sorter/internal/util"
	"github.com/spf13/afero"
)

// CreateDirError reports a destination directory that could not be created
type CreateDirError struct {
	Dir string
	Err error
}

func (e *CreateDirError) Error() string {
	return fmt.Sprintf("failed to create directory %s: %v", e.Dir, e.Err)
}

func (e *CreateDirError) Unwrap() error {
	return e.Err
}

// DirCache remembers the directories ensured during a run so each one is
// probed at most once. It creates a single level only: the parent must
// already exist.
type DirCache struct {
	fs      afero.Fs
	retry   *util.RetryConfig
	logger  *report.EventLogger
	seen    map[string]struct{}
	created int
}

// NewDirCache creates an empty cache operating on fsys
func NewDirCache(fsys afero.Fs, retry *util.RetryConfig, logger *report.EventLogger) *DirCache {
	return &DirCache{
		fs:     fsys,
		retry:  retry,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Ensure makes dir exist. Paths are compared verbatim.
func (c *DirCache) Ensure(dir string) error {
	if _, ok := c.seen[dir]; ok {
		return nil
	}

	if _, err := util.RetryableStat(c.fs, dir, c.retry); err != nil {
		util.InfoLog("Make dir %s", dir)
		c.created++

		err := util.RetryableMkdir(c.fs, dir, 0755, c.retry)
		c.logger.LogMkdir(dir, err)
		if err != nil {
			return &CreateDirError{Dir: dir, Err: err}
		}
	}

	c.seen[dir] = struct{}{}
	return nil
}

// Created returns the number of creation attempts made so far
func (c *DirCache) Created() int {
	return c.created
}

// Len returns the number of directories known to exist
func (c *DirCache) Len() int {
	return len(c.seen)
}
