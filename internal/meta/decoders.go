package meta

import (
	"fmt"
	"io"

	"github.com/bogem/id3v2/v2"
	"github.com/franz/music-sorter/internal/util"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
	"github.com/spf13/afero"
)

// NativeReader picks a format-specific decoder from the extension: ID3v2
// frames for mp3, Vorbis comments for flac
type NativeReader struct {
	fs       afero.Fs
	decoders map[string]decodeFunc
}

type decodeFunc func(r io.Reader) (*TagData, error)

// NewNativeReader creates a NativeReader opening files through fsys
func NewNativeReader(fsys afero.Fs) *NativeReader {
	return &NativeReader{
		fs: fsys,
		decoders: map[string]decodeFunc{
			"mp3":  decodeID3v2,
			"flac": decodeVorbisComment,
		},
	}
}

// Read implements TagReader
func (r *NativeReader) Read(path, ext string) (*TagData, error) {
	decode, ok := r.decoders[ext]
	if !ok {
		return nil, &TagReadError{Path: path, Err: fmt.Errorf("%w: extension %q", util.ErrUnsupported, ext)}
	}

	f, err := r.fs.Open(path)
	if err != nil {
		return nil, &TagReadError{Path: path, Err: err}
	}
	defer f.Close()

	data, err := decode(f)
	if err != nil {
		return nil, &TagReadError{Path: path, Err: err}
	}
	return data, nil
}

func decodeID3v2(r io.Reader) (*TagData, error) {
	t, err := id3v2.ParseReader(r, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("parse id3v2: %w", err)
	}

	return &TagData{
		Artist: optional(t.Artist()),
		Album:  optional(t.Album()),
		Track:  parseTrackNumber(t.GetTextFrame(t.CommonID("Track number/Position in set")).Text),
		Title:  optional(t.Title()),
	}, nil
}

func decodeVorbisComment(r io.Reader) (*TagData, error) {
	f, err := flac.ParseMetadata(r)
	if err != nil {
		return nil, fmt.Errorf("parse flac: %w", err)
	}

	data := &TagData{}
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return nil, fmt.Errorf("parse vorbis comment: %w", err)
		}
		data.Artist = firstComment(cmt, flacvorbis.FIELD_ARTIST)
		data.Album = firstComment(cmt, flacvorbis.FIELD_ALBUM)
		data.Title = firstComment(cmt, flacvorbis.FIELD_TITLE)
		if track := firstComment(cmt, flacvorbis.FIELD_TRACKNUMBER); track != nil {
			data.Track = parseTrackNumber(*track)
		}
		break
	}
	return data, nil
}

func firstComment(cmt *flacvorbis.MetaDataBlockVorbisComment, field string) *string {
	values, err := cmt.Get(field)
	if err != nil || len(values) == 0 {
		return nil
	}
	return optional(values[0])
}
