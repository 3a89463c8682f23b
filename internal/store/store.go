// Package store persists, per watched path, an append-only ordered
// list of line deltas plus a per-path timestamp stack and cursor, and
// serves windowed views, undo, and redo over them.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/xonecas/autostash/internal/delta"
	"github.com/xonecas/autostash/internal/errkind"
)

const schema = `
CREATE TABLE IF NOT EXISTS deltas (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	path         TEXT NOT NULL,
	line_number  INTEGER NOT NULL,
	line         TEXT NOT NULL,
	changed_line TEXT NOT NULL,
	date_time    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS version_stack (
	path      TEXT NOT NULL,
	seq       INTEGER NOT NULL,
	date_time TEXT NOT NULL,
	PRIMARY KEY (path, seq)
);
CREATE TABLE IF NOT EXISTS version_marker (
	path   TEXT PRIMARY KEY,
	cursor INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deltas_path ON deltas(path);
CREATE INDEX IF NOT EXISTS idx_deltas_path_date ON deltas(path, date_time);
`

// TimeWindow is one of the enumerated windows a FileView can be
// restricted to.
type TimeWindow int

const (
	WindowMinute TimeWindow = iota
	WindowHour
	WindowDay
	WindowWeek
)

// Duration returns the wall-clock span a TimeWindow covers.
func (w TimeWindow) Duration() time.Duration {
	switch w {
	case WindowMinute:
		return time.Minute
	case WindowHour:
		return time.Hour
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}

// Snapshot is a time-bounded group of deltas for one path.
type Snapshot struct {
	DateTime time.Time
	Changes  []delta.LineDelta
}

// HitsOfCode aggregates how many deltas were recorded on one day.
type HitsOfCode struct {
	Date  time.Time
	Count int
}

// FileView is the read-only projection delivered to a viewer for one
// path, restricted to the active TimeWindow.
type FileView struct {
	Path       string
	Snapshots  []Snapshot
	HitsOfCode []HitsOfCode
}

// Store persists per-path delta histories and serves undo/redo and
// windowed views. All mutating operations share one mutex; readers
// observe a consistent before-or-after state, never a partial one.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	window TimeWindow
}

// Open creates or opens a store database at the given path.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, window: WindowDay}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// SetWindow changes the active TimeWindow used by View. No
// persistence is needed; it is process-local display state.
func (s *Store) SetWindow(w TimeWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = w
}

// KnownPaths returns every path with a version marker, i.e. every
// path that has ever been seeded or appended to.
func (s *Store) KnownPaths() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT path FROM version_marker ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("%w: list known paths: %v", errkind.ErrStoreIO, err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			continue
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Seed initializes a fresh path's history from its current on-disk
// lines, per Bootstrap's initial scan. It is a no-op if the path
// already has a version marker. Per Open Question (a), the seed
// population counts as the path's first snapshot, so the cursor is
// left at 1 (the path is "viewing" that single seed snapshot), not 0.
func (s *Store) Seed(path string, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.db.QueryRow(`SELECT 1 FROM version_marker WHERE path = ?`, path).Scan(&exists)
	if err == nil && exists {
		return nil
	}

	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin seed: %v", errkind.ErrStoreIO, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	for i, line := range lines {
		if _, err := tx.Exec(
			`INSERT INTO deltas (path, line_number, line, changed_line, date_time) VALUES (?, ?, '', ?, ?)`,
			path, i, line, now.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("%w: seed insert: %v", errkind.ErrStoreIO, err)
		}
	}
	if _, err := tx.Exec(
		`INSERT INTO version_stack (path, seq, date_time) VALUES (?, 0, ?)`,
		path, now.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("%w: seed version_stack: %v", errkind.ErrStoreIO, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO version_marker (path, cursor) VALUES (?, 1)`, path,
	); err != nil {
		return fmt.Errorf("%w: seed version_marker: %v", errkind.ErrStoreIO, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit seed: %v", errkind.ErrStoreIO, err)
	}
	return nil
}

// Append atomically appends deltas to path's history, pushes now onto
// its timestamp stack, and increments its cursor by 1. If the path is
// new, the appended batch becomes its first snapshot (seq 0) and its
// cursor is set to 1; no separate seed snapshot is written. Persists
// before returning; on failure no partial state is committed.
func (s *Store) Append(path string, deltas []delta.LineDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin append: %v", errkind.ErrStoreIO, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	var cursor int
	err = tx.QueryRow(`SELECT cursor FROM version_marker WHERE path = ?`, path).Scan(&cursor)
	isNew := err == sql.ErrNoRows
	if err != nil && !isNew {
		return fmt.Errorf("%w: read cursor: %v", errkind.ErrStoreIO, err)
	}

	for _, d := range deltas {
		if _, err := tx.Exec(
			`INSERT INTO deltas (path, line_number, line, changed_line, date_time) VALUES (?, ?, ?, ?, ?)`,
			path, d.LineNumber, d.Line, d.ChangedLine, now.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("%w: append insert: %v", errkind.ErrStoreIO, err)
		}
	}

	var nextSeq int
	if isNew {
		nextSeq = 0
		cursor = 0
	} else {
		var maxSeq sql.NullInt64
		if err := tx.QueryRow(`SELECT MAX(seq) FROM version_stack WHERE path = ?`, path).Scan(&maxSeq); err != nil {
			return fmt.Errorf("%w: read max seq: %v", errkind.ErrStoreIO, err)
		}
		nextSeq = int(maxSeq.Int64) + 1
	}

	if _, err := tx.Exec(
		`INSERT INTO version_stack (path, seq, date_time) VALUES (?, ?, ?)`,
		path, nextSeq, now.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("%w: append version_stack: %v", errkind.ErrStoreIO, err)
	}

	newCursor := cursor + 1
	if _, err := tx.Exec(
		`INSERT INTO version_marker (path, cursor) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET cursor = excluded.cursor`,
		path, newCursor,
	); err != nil {
		return fmt.Errorf("%w: append version_marker: %v", errkind.ErrStoreIO, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit append: %v", errkind.ErrStoreIO, err)
	}
	return nil
}

// HistoryOf returns the full ordered delta log for a path.
func (s *Store) HistoryOf(path string) ([]delta.LineDelta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyOfLocked(path)
}

func (s *Store) historyOfLocked(path string) ([]delta.LineDelta, error) {
	rows, err := s.db.Query(
		`SELECT line_number, line, changed_line, date_time FROM deltas WHERE path = ? ORDER BY id`,
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: history query: %v", errkind.ErrStoreIO, err)
	}
	defer rows.Close()

	var out []delta.LineDelta
	for rows.Next() {
		var lineNumber int
		var line, changedLine, dt string
		if err := rows.Scan(&lineNumber, &line, &changedLine, &dt); err != nil {
			return nil, fmt.Errorf("%w: history scan: %v", errkind.ErrStoreIO, err)
		}
		ts, _ := time.Parse(time.RFC3339Nano, dt)
		out = append(out, delta.LineDelta{Path: path, LineNumber: lineNumber, Line: line, ChangedLine: changedLine, DateTime: ts})
	}
	return out, rows.Err()
}

func (s *Store) timestampsLocked(path string) ([]time.Time, error) {
	rows, err := s.db.Query(
		`SELECT date_time FROM version_stack WHERE path = ? ORDER BY seq`, path,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamps query: %v", errkind.ErrStoreIO, err)
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var dt string
		if err := rows.Scan(&dt); err != nil {
			continue
		}
		ts, _ := time.Parse(time.RFC3339Nano, dt)
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *Store) cursorLocked(path string) (int, error) {
	var cursor int
	err := s.db.QueryRow(`SELECT cursor FROM version_marker WHERE path = ?`, path).Scan(&cursor)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: cursor query: %v", errkind.ErrStoreIO, err)
	}
	return cursor, nil
}

// View returns a FileView per known path, restricted to the active
// TimeWindow. Read failures for a single path degrade that path's
// entry to nil rather than failing the whole call; a path with no
// timestamp inside the window also gets a nil entry.
func (s *Store) View() ([]*FileView, error) {
	s.mu.Lock()
	window := s.window
	paths, err := s.knownPathsLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	views := make([]*FileView, 0, len(paths))
	for _, p := range paths {
		v, err := s.viewForPath(p, window)
		if err != nil {
			log.Warn().Err(err).Str("path", p).Msg("view degraded for path")
			views = append(views, nil)
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Store) knownPathsLocked() ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM version_marker ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errkind.ErrStoreIO, err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			continue
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *Store) viewForPath(path string, window TimeWindow) (*FileView, error) {
	s.mu.Lock()
	timestamps, err := s.timestampsLocked(path)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	allDeltas, err := s.historyOfLocked(path)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-window.Duration())
	var inWindow []time.Time
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			inWindow = append(inWindow, ts)
		}
	}
	if len(inWindow) == 0 {
		return nil, nil
	}

	// Sort descending for adjacent-pair snapshot construction, per
	// spec.md §4.2.
	sort.Slice(inWindow, func(i, j int) bool { return inWindow[i].After(inWindow[j]) })

	snapshots := make([]Snapshot, 0, len(inWindow))
	for i, upper := range inWindow {
		var lower time.Time // zero value: "beginning of time"
		if i+1 < len(inWindow) {
			lower = inWindow[i+1]
		}
		var changes []delta.LineDelta
		for _, d := range allDeltas {
			if !d.DateTime.After(upper) && d.DateTime.After(lower) {
				changes = append(changes, d)
			}
		}
		sort.Sort(sort.Reverse(delta.ByDateTime(changes)))
		snapshots = append(snapshots, Snapshot{DateTime: upper, Changes: changes})
	}

	hoc := hitsOfCode(allDeltas, cutoff)

	return &FileView{Path: path, Snapshots: snapshots, HitsOfCode: hoc}, nil
}

func hitsOfCode(deltas []delta.LineDelta, cutoff time.Time) []HitsOfCode {
	byDay := make(map[string]int)
	for _, d := range deltas {
		if !d.DateTime.After(cutoff) {
			continue
		}
		key := d.DateTime.Format("2006-01-02")
		byDay[key]++
	}
	out := make([]HitsOfCode, 0, len(byDay))
	for k, n := range byDay {
		day, _ := time.Parse("2006-01-02", k)
		out = append(out, HitsOfCode{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Undo moves path's cursor back by n (clamped to >= 0) and
// materializes the file content at that cursor. A path with no
// recorded history clamps silently: Undo returns (nil, nil).
func (s *Store) Undo(path string, n uint) ([]string, error) {
	return s.move(path, -int(n))
}

// Redo moves path's cursor forward by n (clamped to <= len(timestamps))
// and materializes the file content at that cursor.
func (s *Store) Redo(path string, n uint) ([]string, error) {
	return s.move(path, int(n))
}

func (s *Store) move(path string, steps int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timestamps, err := s.timestampsLocked(path)
	if err != nil {
		return nil, err
	}
	if len(timestamps) == 0 {
		// Nothing recorded for this path: clamp silently, never an error.
		return nil, nil
	}
	cursor, err := s.cursorLocked(path)
	if err != nil {
		return nil, err
	}

	newCursor := cursor + steps
	if newCursor < 0 {
		newCursor = 0
	}
	if newCursor > len(timestamps) {
		newCursor = len(timestamps)
	}

	lines, err := s.materializeLocked(path, timestamps, newCursor)
	if err != nil {
		return nil, fmt.Errorf("%w: materialize: %v", errkind.ErrFileIO, err)
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+trailingNewline(lines)), 0o600); err != nil {
		return lines, fmt.Errorf("%w: write %s: %v", errkind.ErrFileIO, path, err)
	}

	if _, err := s.db.Exec(
		`INSERT INTO version_marker (path, cursor) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET cursor = excluded.cursor`,
		path, newCursor,
	); err != nil {
		return lines, fmt.Errorf("%w: persist cursor: %v", errkind.ErrStoreIO, err)
	}

	return lines, nil
}

func trailingNewline(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return "\n"
}

// materializeLocked implements spec.md §4.2's materialization
// algorithm: at cursor position k (k >= 1), every line's latest delta
// with date_time <= timestamps[k-1] determines that line's content (a
// removal drops the line); lines never touched keep today's on-disk
// content. At k == 0 no delta qualifies, so the on-disk content is
// kept as it is.
func (s *Store) materializeLocked(path string, timestamps []time.Time, cursor int) ([]string, error) {
	boundary := time.Time{}
	if cursor > 0 && cursor <= len(timestamps) {
		boundary = timestamps[cursor-1]
	} else if cursor > len(timestamps) {
		boundary = timestamps[len(timestamps)-1]
	}

	current, err := readLinesIfExists(path)
	if err != nil {
		return nil, err
	}

	allDeltas, err := s.historyOfLocked(path)
	if err != nil {
		return nil, err
	}

	effective := make(map[int]delta.LineDelta)
	for _, d := range allDeltas {
		if d.DateTime.After(boundary) {
			continue
		}
		cur, ok := effective[d.LineNumber]
		if !ok || d.DateTime.After(cur.DateTime) {
			effective[d.LineNumber] = d
		}
	}

	maxLine := len(current) - 1
	for ln := range effective {
		if ln > maxLine {
			maxLine = ln
		}
	}

	result := make([]string, 0, maxLine+1)
	for i := 0; i <= maxLine; i++ {
		if d, ok := effective[i]; ok {
			if d.IsRemoval() {
				continue
			}
			result = append(result, d.ChangedLine)
			continue
		}
		if i < len(current) {
			result = append(result, current[i])
		}
	}
	return result, nil
}

func readLinesIfExists(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	text := string(content)
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// StoreDir returns the directory containing the store file, creating
// it if necessary.
func StoreDir(storePath string) (string, error) {
	dir := filepath.Dir(storePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}
	return dir, nil
}
