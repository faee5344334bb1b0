// Package config turns flags, environment and an optional config file into
// the immutable options of one sorting run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/franz/music-sorter/internal/util"
	"github.com/spf13/viper"
)

// Tag reader backends
const (
	BackendNative  = "native"
	BackendGeneric = "generic"
)

// Params selects how files are classified and placed. It does not change
// during a run.
type Params struct {
	Copy      bool // copy instead of rename
	Metadata  bool // read tags instead of matching the filename pattern
	Recursive bool // walk subdirectories of the input
}

// Options is the complete configuration of a run
type Options struct {
	InputDir  string
	OutputDir string
	Params    Params

	TagBackend     string
	SkipUnreadable bool
	Sanitize       bool
	ASCII          bool
	Retries        int
	NASMode        *bool

	Journal   string // SQLite placement journal
	EventsDir string // directory for JSONL event logs
	Report    string // Markdown run report

	Verbose bool
	Quiet   bool
}

// Load reads the run options from v. Keys match the long flag names.
//
// The input directory is always canonicalized. The output directory is
// canonicalized only when it defaults to the working directory; an explicit
// value is used verbatim.
func Load(v *viper.Viper) (*Options, error) {
	opts := &Options{
		Params: Params{
			Copy:      v.GetBool("copy"),
			Metadata:  v.GetBool("metadata"),
			Recursive: v.GetBool("recursive"),
		},
		TagBackend:     GetString(v, "tag-backend", BackendNative),
		SkipUnreadable: v.GetBool("skip-unreadable"),
		Sanitize:       v.GetBool("sanitize"),
		ASCII:          v.GetBool("ascii"),
		Retries:        v.GetInt("retries"),
		Journal:        v.GetString("journal"),
		EventsDir:      v.GetString("events"),
		Report:         v.GetString("report"),
		Verbose:        v.GetBool("verbose"),
		Quiet:          v.GetBool("quiet"),
	}

	switch opts.TagBackend {
	case BackendNative, BackendGeneric:
	default:
		return nil, fmt.Errorf("%w: unknown tag backend %q", util.ErrInvalidConfig, opts.TagBackend)
	}

	if v.IsSet("nas-mode") {
		nas := v.GetBool("nas-mode")
		opts.NASMode = &nas
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	input := GetString(v, "dir", cwd)
	if opts.InputDir, err = Canonicalize(input); err != nil {
		return nil, fmt.Errorf("input directory %s: %w", input, err)
	}

	if out := v.GetString("out"); out != "" {
		opts.OutputDir = out
	} else if opts.OutputDir, err = Canonicalize(cwd); err != nil {
		return nil, fmt.Errorf("output directory %s: %w", cwd, err)
	}

	return opts, nil
}

// Canonicalize returns the absolute path of p with symlinks resolved. The
// path must exist.
func Canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", util.ErrNotFound, abs)
		}
		return "", err
	}
	return resolved, nil
}

// GetString retrieves a string value with precedence flag > env > config
// file > defaultValue
func GetString(v *viper.Viper, key string, defaultValue string) string {
	val := v.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}
