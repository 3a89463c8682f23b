package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// GutterMark classifies a line in a rendered diff for gutter display.
type GutterMark int

const (
	GutterAdd GutterMark = iota
	GutterDelete
	GutterChange
)

// SnapshotMarkers diffs a snapshot's before/after line content and
// returns gutter markers keyed by 0-indexed line number in after.
func SnapshotMarkers(before, after []string) map[int]GutterMark {
	beforeText := strings.Join(before, "\n")
	afterText := strings.Join(after, "\n")
	if beforeText == afterText {
		return nil
	}

	uri := span.URIFromPath("snapshot")
	edits := myers.ComputeEdits(uri, beforeText, afterText)
	diff := fmt.Sprint(gotextdiff.ToUnified("before", "after", beforeText, edits))

	return ParseDiffMarkers(diff)
}

// ParseDiffMarkers parses unified diff text (--unified=0 style hunk
// headers) and returns gutter markers keyed by 0-indexed line number
// in the new file.
func ParseDiffMarkers(diff string) map[int]GutterMark {
	if strings.TrimSpace(diff) == "" {
		return nil
	}

	markers := make(map[int]GutterMark)

	for _, line := range strings.Split(diff, "\n") {
		if !strings.HasPrefix(line, "@@ ") {
			continue
		}

		newStart, newCount, oldCount, ok := parseHunkHeader(line)
		if !ok {
			continue
		}

		switch {
		case newCount == 0:
			// Pure deletion: newStart points to the line after it.
			row := newStart - 1
			if row < 0 {
				row = 0
			}
			markers[row] = GutterDelete
		case oldCount == 0:
			for i := 0; i < newCount; i++ {
				markers[newStart-1+i] = GutterAdd
			}
		default:
			for i := 0; i < newCount; i++ {
				markers[newStart-1+i] = GutterChange
			}
		}
	}

	if len(markers) == 0 {
		return nil
	}
	return markers
}

// parseHunkHeader extracts newStart, newCount, oldCount from a @@ line.
// Format: @@ -oldStart[,oldCount] +newStart[,newCount] @@
func parseHunkHeader(line string) (newStart, newCount, oldCount int, ok bool) {
	idx := strings.Index(line[3:], " @@")
	if idx < 0 {
		return 0, 0, 0, false
	}
	header := line[3 : 3+idx] // e.g. "-10,3 +12,5"

	parts := strings.Fields(header)
	if len(parts) != 2 {
		return 0, 0, 0, false
	}

	old := strings.TrimPrefix(parts[0], "-")
	_, oldCount = parseRange(old)

	neu := strings.TrimPrefix(parts[1], "+")
	newStart, newCount = parseRange(neu)

	if newStart == 0 {
		return 0, 0, 0, false
	}
	return newStart, newCount, oldCount, true
}

// parseRange parses "start,count" or "start" (count defaults to 1).
func parseRange(s string) (start, count int) {
	if idx := strings.IndexByte(s, ','); idx >= 0 {
		start, _ = strconv.Atoi(s[:idx])
		count, _ = strconv.Atoi(s[idx+1:])
		return start, count
	}
	start, _ = strconv.Atoi(s)
	return start, 1
}
