// Package delta defines the line-level change record AutoStash persists
// for every tracked path and the equality/ordering rules that govern it.
package delta

import "time"

// LineDelta is a single recorded change to one line of one file.
//
// Equality excludes DateTime so structurally identical deltas recorded
// at different times can still be deduplicated ("effective prior
// state" in the diff engine). Ordering is by DateTime only.
type LineDelta struct {
	Path        string
	LineNumber  int
	Line        string // prior content; "" means insertion
	ChangedLine string // new content; "" means removal
	DateTime    time.Time
}

// New stamps a LineDelta with the current time.
func New(path string, lineNumber int, line, changedLine string) LineDelta {
	return LineDelta{
		Path:        path,
		LineNumber:  lineNumber,
		Line:        line,
		ChangedLine: changedLine,
		DateTime:    time.Now(),
	}
}

// Equal compares two deltas on (Path, LineNumber, Line, ChangedLine),
// ignoring DateTime.
func (d LineDelta) Equal(other LineDelta) bool {
	return d.Path == other.Path &&
		d.LineNumber == other.LineNumber &&
		d.Line == other.Line &&
		d.ChangedLine == other.ChangedLine
}

// IsInsertion reports whether this delta introduces a line that had no
// prior content.
func (d LineDelta) IsInsertion() bool {
	return d.Line == ""
}

// IsRemoval reports whether this delta removes a line entirely.
func (d LineDelta) IsRemoval() bool {
	return d.ChangedLine == ""
}

// ByDateTime sorts a slice of LineDelta by DateTime ascending. It is a
// named type rather than a bare sort.Slice call so callers elsewhere
// can rely on a single definition of delta ordering.
type ByDateTime []LineDelta

func (b ByDateTime) Len() int           { return len(b) }
func (b ByDateTime) Less(i, j int) bool { return b[i].DateTime.Before(b[j].DateTime) }
func (b ByDateTime) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }

// Latest returns, for each line number in deltas, the delta with the
// greatest DateTime — the "effective prior state" per invariant I5.
func Latest(deltas []LineDelta) map[int]LineDelta {
	effective := make(map[int]LineDelta, len(deltas))
	for _, d := range deltas {
		cur, ok := effective[d.LineNumber]
		if !ok || d.DateTime.After(cur.DateTime) {
			effective[d.LineNumber] = d
		}
	}
	return effective
}
