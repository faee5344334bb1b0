package meta

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

var segmentReplacer = strings.NewReplacer(
	"\x00", "",
	"/", " ",
	string(filepath.Separator), " ",
)

// SafeSegment makes s usable as a single path segment: NUL is dropped,
// separators become spaces, runs of whitespace collapse, and the result is
// NFC-normalized. "." and ".." are replaced so they cannot walk the tree.
func SafeSegment(s string) string {
	s = segmentReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = norm.NFC.String(s)
	switch s {
	case ".", "..":
		return strings.Repeat("_", len(s))
	}
	return s
}

// Transliterate replaces non-ASCII characters with their closest ASCII
// spelling, so "Björk" becomes "Bjork".
func Transliterate(s string) string {
	return strings.TrimSpace(unidecode.Unidecode(s))
}
