package ui

import "golang.org/x/term"

// Fallback column count when the terminal size cannot be queried.
const defaultTermWidth = 80

// IsTTY reports whether fd refers to an interactive terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// TermWidth reports the column count of the terminal behind fd, falling
// back to 80 so progress lines always have a usable clamp.
func TermWidth(fd uintptr) int {
	if w, _, err := term.GetSize(int(fd)); err == nil && w > 0 {
		return w
	}
	return defaultTermWidth
}
