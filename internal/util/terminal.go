package util

import (
	"os"

	"golang.org/x/term"
)

const fallbackWidth = 80

// IsTerminal reports whether fd is attached to a terminal
func IsTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// GetTerminalWidth is the column count of the terminal on stderr, or 80 when
// stderr is redirected
func GetTerminalWidth() int {
	if !IsTerminal(os.Stderr.Fd()) {
		return fallbackWidth
	}
	if width, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && width > 0 {
		return width
	}
	return fallbackWidth
}
