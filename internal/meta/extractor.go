package meta

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/franz/music-sorter/internal/config"
	"github.com/franz/music-sorter/internal/util"
)

// Info describes where one audio file belongs
type Info struct {
	Artist string
	Album  string
	Track  string // decimal digits, never padded
	Song   string
	Ext    string // "mp3" or "flac"
}

// ErrSkip marks files the run leaves untouched
var ErrSkip = errors.New("skipped")

// SkipError is returned for files that are not placed. Reason is the
// diagnostic line reported for the file.
type SkipError struct {
	Reason string
	Err    error
}

func (e *SkipError) Error() string {
	return e.Reason
}

func (e *SkipError) Is(target error) bool {
	return target == ErrSkip
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// Extractor derives an Info for a file, either from its tags or from its
// filename, depending on Params.Metadata. The two are never mixed.
type Extractor struct {
	params         config.Params
	reader         TagReader
	sanitize       bool
	skipUnreadable bool
	ascii          bool
}

// Config holds extractor configuration
type Config struct {
	Params         config.Params
	Reader         TagReader // required in metadata mode
	Sanitize       bool      // pass artist, album and song through SafeSegment
	SkipUnreadable bool      // report tag read failures as skips instead of errors
	ASCII          bool      // transliterate artist, album and song to ASCII
}

// New creates a new Extractor
func New(cfg *Config) *Extractor {
	return &Extractor{
		params:         cfg.Params,
		reader:         cfg.Reader,
		sanitize:       cfg.Sanitize,
		skipUnreadable: cfg.SkipUnreadable,
		ascii:          cfg.ASCII,
	}
}

// Extract returns the Info for the file at path whose leaf name is filename.
// Files that should be left alone yield a *SkipError; a *TagReadError is
// fatal unless SkipUnreadable is set.
func (e *Extractor) Extract(path, filename string) (*Info, error) {
	var (
		info *Info
		err  error
	)
	if e.params.Metadata {
		info, err = e.fromTags(path, filename)
	} else {
		info, err = e.fromFilename(path, filename)
	}
	if err != nil {
		return nil, err
	}

	if e.ascii {
		info.Artist = Transliterate(info.Artist)
		info.Album = Transliterate(info.Album)
		info.Song = Transliterate(info.Song)
	}
	if e.sanitize {
		info.Artist = SafeSegment(info.Artist)
		info.Album = SafeSegment(info.Album)
		info.Song = SafeSegment(info.Song)
	}
	return info, nil
}

func (e *Extractor) fromFilename(path, filename string) (*Info, error) {
	info, ok := ParseTrackFilename(filename)
	if !ok {
		return nil, &SkipError{Reason: fmt.Sprintf("Pattern not matched for file %s", path)}
	}
	return info, nil
}

func (e *Extractor) fromTags(path, filename string) (*Info, error) {
	ext := extensionOf(filename)
	if ext == "" {
		return nil, &SkipError{
			Reason: fmt.Sprintf("Extension not supported for file %s", path),
			Err:    util.ErrUnsupported,
		}
	}

	data, err := e.reader.Read(path, ext)
	if err != nil {
		var readErr *TagReadError
		if e.skipUnreadable && errors.As(err, &readErr) {
			return nil, &SkipError{
				Reason: fmt.Sprintf("Unreadable tags for file %s: %v", path, readErr.Err),
				Err:    err,
			}
		}
		return nil, err
	}

	track := 0
	if data.Track != nil {
		track = *data.Track
	}
	return &Info{
		Artist: valueOr(data.Artist),
		Album:  valueOr(data.Album),
		Track:  strconv.Itoa(track),
		Song:   valueOr(data.Title),
		Ext:    ext,
	}, nil
}

// extensionOf maps a filename suffix to a supported extension. The check is
// case-sensitive.
func extensionOf(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".mp3"):
		return "mp3"
	case strings.HasSuffix(filename, ".flac"):
		return "flac"
	}
	return ""
}

func valueOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
