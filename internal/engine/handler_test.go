package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xonecas/autostash/internal/fabric"
	"github.com/xonecas/autostash/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func awaitViews(t *testing.T, fab *fabric.Fabric) []*store.FileView {
	t.Helper()
	select {
	case v := <-fab.Views:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published view")
		return nil
	}
}

// TestHandlerWriteAppendsAndPublishes covers the write reaction in
// spec.md §4.3: a write event results in an appended delta and a
// published view reflecting it.
func TestHandlerWriteAppendsAndPublishes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("a\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := openTestStore(t)
	if err := s.Seed(path, []string{"a"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := os.WriteFile(path, []byte("A\n"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	fab := fabric.New()
	h := NewHandler(s, fab)
	go h.Run()
	defer fab.Close()

	fab.Writes <- fabric.WriteEvent{Path: path}

	views := awaitViews(t, fab)
	if len(views) != 1 || views[0] == nil {
		t.Fatalf("expected 1 published view, got %v", views)
	}
	if views[0].Path != path {
		t.Fatalf("expected view for %s, got %s", path, views[0].Path)
	}

	history, err := s.HistoryOf(path)
	if err != nil {
		t.Fatalf("HistoryOf: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 deltas (seed + write), got %d", len(history))
	}
}

// TestHandlerUndoPublishesView covers the undo reaction in spec.md §4.3.
func TestHandlerUndoPublishesView(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("a\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := openTestStore(t)
	if err := s.Seed(path, []string{"a"}); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	fab := fabric.New()
	h := NewHandler(s, fab)
	go h.Run()
	defer fab.Close()

	fab.Undo <- fabric.UndoCommand{Path: path, Count: 1}
	awaitViews(t, fab)
}

// TestHandlerWindowChangePublishesView covers the window-change
// reaction in spec.md §4.3.
func TestHandlerWindowChangePublishesView(t *testing.T) {
	s := openTestStore(t)
	fab := fabric.New()
	h := NewHandler(s, fab)
	go h.Run()
	defer fab.Close()

	fab.WindowChange <- fabric.WindowChangeCommand{Window: store.WindowHour}
	awaitViews(t, fab)
}
