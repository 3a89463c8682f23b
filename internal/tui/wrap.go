package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/xonecas/autostash/internal/highlight"
)

// wrapANSI word-wraps a syntax-highlighted string to width, returning
// independently renderable visual lines: each carries forward whatever
// SGR styling was still open at the point it was split, so a wrapped
// continuation line never loses its color.
func wrapANSI(s string, width int) []string {
	if width <= 0 || s == "" {
		return []string{s}
	}
	wrapped := ansi.Wordwrap(s, width, "")
	wrapped = ansi.Hardwrap(wrapped, width, true)
	return closeStyledLines(splitLines(wrapped))
}

// closeStyledLines threads open SGR state across line boundaries: a
// continuation line is prefixed with whatever sequences were still active
// at the end of the previous one, and every non-final line gets an
// explicit reset appended so trailing padding never inherits its style.
func closeStyledLines(lines []string) []string {
	if len(lines) <= 1 {
		return lines
	}

	var open []string
	out := make([]string, len(lines))
	for i, line := range lines {
		if i > 0 && len(open) > 0 {
			line = strings.Join(open, "") + line
		}
		open = highlight.TrackSGR(line, open)
		if i < len(lines)-1 && len(open) > 0 {
			line += ansi.ResetStyle
		}
		out[i] = line
	}
	return out
}

// splitLines splits on newline without the trailing empty element
// strings.Split leaves behind for a trailing newline.
func splitLines(s string) []string {
	lines := make([]string, 0, 8)
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) || len(lines) == 0 {
		lines = append(lines, s[start:])
	}
	return lines
}
