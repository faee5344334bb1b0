package meta

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dhowden/tag"
	"github.com/franz/music-sorter/internal/util"
	"github.com/spf13/afero"
)

// TagData holds the embedded tags the sorter needs. Nil means the tag is
// absent from the file.
type TagData struct {
	Artist *string
	Album  *string
	Track  *int
	Title  *string
}

// TagReader reads embedded tags from an audio file whose extension is
// already known to be "mp3" or "flac"
type TagReader interface {
	Read(path, ext string) (*TagData, error)
}

// TagReadError reports a file whose tags could not be read
type TagReadError struct {
	Path string
	Err  error
}

func (e *TagReadError) Error() string {
	return fmt.Sprintf("failed to read tags from %s: %v", e.Path, e.Err)
}

func (e *TagReadError) Unwrap() []error {
	return []error{util.ErrCorrupt, e.Err}
}

// GenericReader reads tags with github.com/dhowden/tag, which sniffs the
// container itself. Empty values are reported as absent.
type GenericReader struct {
	fs afero.Fs
}

// NewGenericReader creates a GenericReader opening files through fsys
func NewGenericReader(fsys afero.Fs) *GenericReader {
	return &GenericReader{fs: fsys}
}

// Read implements TagReader
func (r *GenericReader) Read(path, ext string) (*TagData, error) {
	if ext != "mp3" && ext != "flac" {
		return nil, &TagReadError{Path: path, Err: util.ErrUnsupported}
	}

	f, err := r.fs.Open(path)
	if err != nil {
		return nil, &TagReadError{Path: path, Err: err}
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return &TagData{}, nil
		}
		return nil, &TagReadError{Path: path, Err: err}
	}

	track, _ := m.Track()
	return &TagData{
		Artist: optional(m.Artist()),
		Album:  optional(m.Album()),
		Track:  optionalTrack(track),
		Title:  optional(m.Title()),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalTrack(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// parseTrackNumber parses "7" or "7/12" style track values
func parseTrackNumber(s string) *int {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return optionalTrack(n)
}
