package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xonecas/autostash/internal/fabric"
)

// TestWatcherDebounceCoalesces covers S6: several rapid writes to the
// same path within the debounce window coalesce into one write event.
func TestWatcherDebounceCoalesces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("a\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fab := fabric.New()
	excl := NewExclusions(nil, nil, nil)
	w, err := New(dir, excl, 50*time.Millisecond, fab)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.AddDirs(); err != nil {
		t.Fatalf("AddDirs: %v", err)
	}
	go w.Run()
	defer fab.Close()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("a\nb\n"), 0o600); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case ev := <-fab.Writes:
		if ev.Path != path {
			t.Fatalf("expected write event for %s, got %s", path, ev.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced write event")
	}

	select {
	case ev := <-fab.Writes:
		t.Fatalf("expected exactly one coalesced write event, got a second: %+v", ev)
	case <-time.After(150 * time.Millisecond):
	}
}

// TestWatcherExcludesFile covers P6 at watcher level: writes to an
// excluded file never produce a write event.
func TestWatcherExcludesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ignore.me")
	if err := os.WriteFile(path, []byte("a\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fab := fabric.New()
	excl := NewExclusions([]string{"ignore.me"}, nil, nil)
	w, err := New(dir, excl, 20*time.Millisecond, fab)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.AddDirs(); err != nil {
		t.Fatalf("AddDirs: %v", err)
	}
	go w.Run()
	defer fab.Close()

	if err := os.WriteFile(path, []byte("a\nb\n"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	select {
	case ev := <-fab.Writes:
		t.Fatalf("expected no write event for excluded file, got %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}
