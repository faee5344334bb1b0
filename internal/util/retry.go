package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/spf13/afero"
)

// RetryConfig controls how often a filesystem operation is attempted
type RetryConfig struct {
	MaxAttempts int           // Total attempts, 1 means no retry
	InitialWait time.Duration // Wait before the second attempt, doubled afterwards
	MaxWait     time.Duration // Upper bound for the wait between attempts
}

// SingleAttempt performs every operation exactly once
func SingleAttempt() *RetryConfig {
	return &RetryConfig{MaxAttempts: 1}
}

// DefaultRetryConfig returns the configuration used when retries are requested
// without further tuning
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     5 * time.Second,
	}
}

// NASRetryConfig returns retry config optimized for network mounts
func NASRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		InitialWait: 200 * time.Millisecond,
		MaxWait:     10 * time.Second,
	}
}

// WithAttempts returns a copy of the default config with the given attempt count
func WithAttempts(attempts int) *RetryConfig {
	if attempts <= 1 {
		return SingleAttempt()
	}
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	return cfg
}

// IsRetryableError reports whether err is a transient filesystem or network
// failure. Missing files, permission problems and collisions are never retried.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}

	switch errno {
	case syscall.EAGAIN,
		syscall.EINTR,
		syscall.ETIMEDOUT,
		syscall.ECONNRESET,
		syscall.ECONNABORTED,
		syscall.ENETDOWN,
		syscall.ENETUNREACH,
		syscall.EHOSTDOWN,
		syscall.EHOSTUNREACH,
		syscall.EIO:
		return true
	}
	return false
}

// RetryWithBackoff runs operation until it succeeds, fails permanently, or the
// attempts in cfg are used up
func RetryWithBackoff[T any](cfg *RetryConfig, operation func() (T, error), operationName string) (T, error) {
	if cfg == nil || cfg.MaxAttempts < 1 {
		cfg = SingleAttempt()
	}

	wait := cfg.InitialWait
	for attempt := 1; ; attempt++ {
		result, err := operation()
		if err == nil {
			if attempt > 1 {
				DebugLog("Retry: %s succeeded on attempt %d/%d", operationName, attempt, cfg.MaxAttempts)
			}
			return result, nil
		}

		if !IsRetryableError(err) || cfg.MaxAttempts == 1 {
			return result, err
		}

		if attempt == cfg.MaxAttempts {
			WarnLog("Retry: %s failed after %d attempts: %v", operationName, cfg.MaxAttempts, err)
			return result, fmt.Errorf("max retries exceeded (%d attempts): %w", cfg.MaxAttempts, err)
		}

		DebugLog("Retry: %s failed (attempt %d/%d), retrying in %v: %v",
			operationName, attempt, cfg.MaxAttempts, wait, err)
		time.Sleep(wait)

		wait *= 2
		if cfg.MaxWait > 0 && wait > cfg.MaxWait {
			wait = cfg.MaxWait
		}
	}
}

// Retry is RetryWithBackoff for operations without a result
func Retry(cfg *RetryConfig, operation func() error, operationName string) error {
	_, err := RetryWithBackoff(cfg, func() (struct{}, error) {
		return struct{}{}, operation()
	}, operationName)
	return err
}

// RetryableOpen opens a file with retry logic
func RetryableOpen(fsys afero.Fs, path string, cfg *RetryConfig) (afero.File, error) {
	return RetryWithBackoff(cfg, func() (afero.File, error) {
		return fsys.Open(path)
	}, fmt.Sprintf("open(%s)", path))
}

// RetryableCreate creates or truncates a file with retry logic
func RetryableCreate(fsys afero.Fs, path string, cfg *RetryConfig) (afero.File, error) {
	return RetryWithBackoff(cfg, func() (afero.File, error) {
		return fsys.Create(path)
	}, fmt.Sprintf("create(%s)", path))
}

// RetryableStat stats a path with retry logic
func RetryableStat(fsys afero.Fs, path string, cfg *RetryConfig) (fs.FileInfo, error) {
	return RetryWithBackoff(cfg, func() (fs.FileInfo, error) {
		return fsys.Stat(path)
	}, fmt.Sprintf("stat(%s)", path))
}

// RetryableRemove removes a file with retry logic
func RetryableRemove(fsys afero.Fs, path string, cfg *RetryConfig) error {
	return Retry(cfg, func() error {
		return fsys.Remove(path)
	}, fmt.Sprintf("remove(%s)", path))
}

// RetryableRename renames a file with retry logic
func RetryableRename(fsys afero.Fs, oldpath, newpath string, cfg *RetryConfig) error {
	return Retry(cfg, func() error {
		return fsys.Rename(oldpath, newpath)
	}, fmt.Sprintf("rename(%s -> %s)", oldpath, newpath))
}

// RetryableMkdir creates a single directory level with retry logic
func RetryableMkdir(fsys afero.Fs, path string, perm os.FileMode, cfg *RetryConfig) error {
	return Retry(cfg, func() error {
		return fsys.Mkdir(path, perm)
	}, fmt.Sprintf("mkdir(%s)", path))
}
