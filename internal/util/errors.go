package util

import "errors"

// Sentinel errors shared across packages; typed errors wrap them with %w.
var (
	// ErrUnsupported marks a file extension that no tag reader handles
	ErrUnsupported = errors.New("unsupported")

	// ErrCorrupt marks tags that exist but cannot be decoded
	ErrCorrupt = errors.New("corrupt file")

	// ErrNotFound marks a configured path that does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig marks a configuration value outside its allowed set
	ErrInvalidConfig = errors.New("invalid configuration")
)
