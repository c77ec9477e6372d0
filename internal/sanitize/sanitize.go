// Package sanitize makes server-supplied text safe to draw in a terminal.
package sanitize

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Text strips escape sequences and control characters. Tabs and newlines
// become single spaces so a value always stays on one line.
func Text(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			return -1
		}
		return r
	}, s)
}

// Truncate sanitizes s and cuts it to at most width cells, marking the cut
// with an ellipsis.
func Truncate(s string, width int) string {
	s = Text(s)
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
