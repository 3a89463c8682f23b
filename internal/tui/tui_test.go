package tui

import (
	"testing"

	"github.com/xonecas/autostash/internal/delta"
	"github.com/xonecas/autostash/internal/store"
)

func TestBuildLinesSparseFromChanges(t *testing.T) {
	changes := []delta.LineDelta{
		{LineNumber: 0, Line: "", ChangedLine: "first"},
		{LineNumber: 2, Line: "old", ChangedLine: "new"},
	}
	before, after := buildLines(changes)

	if len(before) != 3 || len(after) != 3 {
		t.Fatalf("expected arrays sized to max line+1, got before=%v after=%v", before, after)
	}
	if after[0] != "first" || after[2] != "new" {
		t.Fatalf("unexpected after content: %v", after)
	}
	if before[2] != "old" {
		t.Fatalf("unexpected before content: %v", before)
	}
}

func TestBuildLinesEmpty(t *testing.T) {
	before, after := buildLines(nil)
	if before != nil || after != nil {
		t.Fatalf("expected nil arrays for no changes, got before=%v after=%v", before, after)
	}
}

func TestModelCursorNavigation(t *testing.T) {
	m := &Model{views: make([]*store.FileView, 3)}

	m.handleDown()
	if m.cursor != 1 {
		t.Fatalf("expected cursor 1 after down, got %d", m.cursor)
	}

	m.cursor = 2
	m.handleDown()
	if m.cursor != 2 {
		t.Fatalf("expected cursor clamped at last index, got %d", m.cursor)
	}

	m.cursor = 0
	m.handleUp()
	if m.cursor != 0 {
		t.Fatalf("expected cursor clamped at 0, got %d", m.cursor)
	}
}
