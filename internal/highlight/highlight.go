// Package highlight renders a file's latest snapshot as syntax-highlighted
// ANSI text for the reference dashboard (C8), built on Chroma's terminal
// tokenizer.
package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Render tokenizes text as the language detected from path and formats it
// through Chroma's true-color terminal formatter under theme. bgHex
// ("#rrggbb") is repainted after every reset Chroma emits, since its
// terminal16m formatter drops the background on tokens that inherit it.
func Render(text, path, theme, bgHex string) string {
	lex := lexers.Get(languageFor(path))
	if lex == nil {
		return text
	}
	lex = chroma.Coalesce(lex)
	sty := styles.Get(theme)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, sty, it); err != nil {
		return text
	}
	raw := strings.TrimRight(buf.String(), "\n")

	bgSeq := bgEscape(bgHex)
	return bgSeq + strings.ReplaceAll(raw, "\x1b[0m", "\x1b[0m"+bgSeq)
}

// bgEscape converts "#rrggbb" to an ANSI 24-bit background escape sequence.
func bgEscape(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return ""
	}
	r := hexByte(hex[1], hex[2])
	g := hexByte(hex[3], hex[4])
	b := hexByte(hex[5], hex[6])
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
}

func hexByte(hi, lo byte) int {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

// SplitLines splits a highlighted block into per-line strings, carrying
// each line's open SGR sequences forward so a line rendered on its own
// (behind the diff gutter, or after wrapping) keeps its color.
func SplitLines(block string) []string {
	lines := strings.Split(block, "\n")
	if len(lines) <= 1 {
		return lines
	}
	var active []string
	for i, line := range lines {
		if i > 0 && len(active) > 0 {
			lines[i] = strings.Join(active, "") + line
		}
		active = TrackSGR(line, active)
	}
	return lines
}

// TrackSGR scans a line for SGR escape sequences and returns the set of
// sequences still open at its end, given the set open at its start. A
// reset ("\x1b[0m" or bare "\x1b[m") clears the set; any other SGR is
// appended. Shared with internal/tui's ANSI line-wrapper so both keep
// color state consistent the same way.
func TrackSGR(line string, active []string) []string {
	for j := 0; j < len(line); j++ {
		if line[j] != '\x1b' || j+1 >= len(line) || line[j+1] != '[' {
			continue
		}
		k := j + 2
		for k < len(line) && line[k] != 'm' && line[k] != '\x1b' {
			k++
		}
		if k >= len(line) || line[k] != 'm' {
			continue
		}
		params := line[j+2 : k]
		if params == "" || params == "0" {
			active = active[:0]
		} else {
			active = append(active, line[j:k+1])
		}
		j = k
	}
	return active
}
