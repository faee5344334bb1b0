package meta

import "regexp"

// trackFilenamePattern matches "Artist-Album-NN Song Title.ext". Artist and
// album cannot contain a hyphen. The match covers the whole leaf name.
var trackFilenamePattern = regexp.MustCompile(`^([^-]*)-([^-]*)-(\d+) (.*)\.(flac|mp3)$`)

// ParseTrackFilename extracts an Info from a leaf filename. Captures are used
// verbatim: no trimming and no case folding.
func ParseTrackFilename(name string) (*Info, bool) {
	m := trackFilenamePattern.FindStringSubmatch(name)
	if m == nil {
		return nil, false
	}

	return &Info{
		Artist: m[1],
		Album:  m[2],
		Track:  m[3],
		Song:   m[4],
		Ext:    m[5],
	}, true
}
