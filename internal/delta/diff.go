package delta

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"time"
)

// FindDeltas returns the deltas that, appended to prior, describe the
// current on-disk content of path. It is pure with respect to prior
// (never mutates it) and never returns more than one delta per line.
//
// All deltas returned from a single call share one DateTime so the
// Store can treat the whole batch as one snapshot boundary.
func FindDeltas(path string, prior []LineDelta) ([]LineDelta, error) {
	now := time.Now()

	effective := Latest(prior)

	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var out []LineDelta
	seen := make(map[int]bool, len(effective))

	for i, line := range lines {
		priorDelta, ok := effective[i]
		seen[i] = ok
		switch {
		case !ok, priorDelta.ChangedLine == "":
			// No effective prior at this line, or the line was
			// previously removed and has now reappeared: treat as a
			// fresh addition. priorDelta.Line is left empty either
			// way, per the insertion convention in the data model.
			out = append(out, LineDelta{
				Path: path, LineNumber: i, Line: "", ChangedLine: line, DateTime: now,
			})
		case priorDelta.ChangedLine != line:
			out = append(out, LineDelta{
				Path: path, LineNumber: i, Line: priorDelta.ChangedLine, ChangedLine: line, DateTime: now,
			})
		default:
			// Unchanged: emit nothing.
		}
	}

	// Distinct effective prior line numbers, for the removal check.
	distinctPrior := len(effective)
	if distinctPrior > len(lines) {
		out = append(out, findRemovedLines(effective, seen, len(lines), now)...)
	}

	return out, nil
}

// findRemovedLines emits a removal delta for every effective prior
// line number at or beyond the current line count that was not
// accounted for in the addition/modification pass and is not already
// recorded as removed. Line numbers below the current count are never
// emitted here.
func findRemovedLines(effective map[int]LineDelta, seen map[int]bool, lineCount int, now time.Time) []LineDelta {
	var out []LineDelta
	for lineNumber, priorDelta := range effective {
		if seen[lineNumber] {
			continue
		}
		if priorDelta.ChangedLine == "" {
			continue // already recorded as removed
		}
		if lineNumber < lineCount {
			continue // covered by the addition/modification pass
		}
		out = append(out, LineDelta{
			Path: priorDelta.Path, LineNumber: lineNumber, Line: priorDelta.ChangedLine, ChangedLine: "", DateTime: now,
		})
	}
	// effective is a map, so iteration order is random; sort ascending by
	// line number to match the addition/modification pass above and keep
	// "insertions followed by removals" deterministic for a given input.
	sort.Slice(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out
}

// readLines reads path and returns its lines, newline-stripped,
// 0-indexed. Non-UTF-8 byte sequences are tolerated: bufio.Scanner
// operates on bytes and does not validate encoding, so invalid
// sequences simply pass through unchanged.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
