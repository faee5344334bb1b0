package util

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"EAGAIN", syscall.EAGAIN, true},
		{"ETIMEDOUT", syscall.ETIMEDOUT, true},
		{"EIO", syscall.EIO, true},
		{"ENOENT (not retryable)", syscall.ENOENT, false},
		{"EACCES (not retryable)", syscall.EACCES, false},
		{"EXDEV (not retryable)", syscall.EXDEV, false},
		{"plain error", errors.New("connection timeout"), false},
		{
			name:     "PathError with ETIMEDOUT",
			err:      &os.PathError{Op: "open", Path: "/test", Err: syscall.ETIMEDOUT},
			expected: true,
		},
		{
			name:     "LinkError with EXDEV",
			err:      &os.LinkError{Op: "rename", Old: "/a", New: "/b", Err: syscall.EXDEV},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.expected {
				t.Errorf("IsRetryableError(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryWithBackoff_SuccessAfterRetries(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}

	result, err := RetryWithBackoff(cfg, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", syscall.ETIMEDOUT
		}
		return "success", nil
	}, "test operation")

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected result 'success', got: %s", result)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestRetryWithBackoff_FailureAfterMaxRetries(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}

	_, err := RetryWithBackoff(cfg, func() (int, error) {
		attempts++
		return 0, syscall.ETIMEDOUT
	}, "test operation")

	if !errors.Is(err, syscall.ETIMEDOUT) {
		t.Errorf("Expected wrapped ETIMEDOUT, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got: %d", attempts)
	}
}

func TestRetryWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	_, err := RetryWithBackoff(DefaultRetryConfig(), func() (int, error) {
		attempts++
		return 0, syscall.ENOENT
	}, "test operation")

	if !errors.Is(err, syscall.ENOENT) {
		t.Errorf("Expected ENOENT, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestSingleAttemptReturnsErrorUnwrapped(t *testing.T) {
	attempts := 0
	err := Retry(SingleAttempt(), func() error {
		attempts++
		return syscall.EIO
	}, "test operation")

	if err != syscall.EIO {
		t.Errorf("Expected bare EIO, got: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got: %d", attempts)
	}
}

func TestWithAttempts(t *testing.T) {
	if got := WithAttempts(0).MaxAttempts; got != 1 {
		t.Errorf("WithAttempts(0).MaxAttempts = %d, expected 1", got)
	}
	if got := WithAttempts(5).MaxAttempts; got != 5 {
		t.Errorf("WithAttempts(5).MaxAttempts = %d, expected 5", got)
	}
}

func TestRetryableFilesystemHelpers(t *testing.T) {
	fsys := afero.NewMemMapFs()
	cfg := SingleAttempt()

	if err := RetryableMkdir(fsys, "/music", 0755, cfg); err != nil {
		t.Fatalf("RetryableMkdir failed: %v", err)
	}

	f, err := RetryableCreate(fsys, "/music/a.part", cfg)
	if err != nil {
		t.Fatalf("RetryableCreate failed: %v", err)
	}
	f.Close()

	if err := RetryableRename(fsys, "/music/a.part", "/music/a.mp3", cfg); err != nil {
		t.Fatalf("RetryableRename failed: %v", err)
	}
	if _, err := RetryableStat(fsys, "/music/a.mp3", cfg); err != nil {
		t.Errorf("RetryableStat after rename failed: %v", err)
	}
	if err := RetryableRemove(fsys, "/music/a.mp3", cfg); err != nil {
		t.Errorf("RetryableRemove failed: %v", err)
	}
	if _, err := RetryableOpen(fsys, "/music/a.mp3", cfg); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist after remove, got: %v", err)
	}
}
