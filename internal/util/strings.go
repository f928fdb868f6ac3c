// Package util provides small string helpers shared by the CLI and the
// browse picker.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "..."

// Truncate shortens s to at most max runes, replacing the tail with an
// ellipsis when it does not fit. It counts runes, not columns, so it is
// only suitable for unstyled text; styled terminal output goes through
// TruncateWidth instead.
func Truncate(s string, max int) string {
	if max <= len(ellipsis) {
		return ellipsis
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}

// TruncateWidth shortens s to at most max visual columns, replacing the
// tail with an ellipsis when it does not fit. ANSI escape sequences are
// preserved and wide characters count by their display width, so styled
// picker rows keep their colors when cut to the terminal width.
func TruncateWidth(s string, max int) string {
	if max <= len(ellipsis) {
		return ellipsis
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	return ansi.Truncate(s, max, ellipsis)
}
