package plan

import (
	"fmt"
	"path/filepath"

	"github.com/franz/music-sorter/internal/meta"
)

// Layout is the set of paths a placement touches, outermost first
type Layout struct {
	ArtistDir string
	AlbumDir  string
	Dest      string
}

// Destination composes root/artist/album/"track song.ext". Fields are used
// verbatim; callers that want safe segments sanitize the Info beforehand.
func Destination(root string, info *meta.Info) Layout {
	artistDir := filepath.Join(root, info.Artist)
	albumDir := filepath.Join(artistDir, info.Album)

	return Layout{
		ArtistDir: artistDir,
		AlbumDir:  albumDir,
		Dest:      filepath.Join(albumDir, FileName(info)),
	}
}

// FileName renders the leaf name of a placed file. The track is not padded.
func FileName(info *meta.Info) string {
	return fmt.Sprintf("%s %s.%s", info.Track, info.Song, info.Ext)
}
