package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xonecas/autostash/internal/config"
)

// TestBootstrapSeedsWatchedTree covers C7: a fresh store gets one seed
// delta batch per included file, and excluded files are skipped.
func TestBootstrapSeedsWatchedTree(t *testing.T) {
	watchDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(watchDir, "a.txt"), []byte("x\ny\n"), 0o600); err != nil {
		t.Fatalf("write a.txt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(watchDir, "skip.me"), []byte("z\n"), 0o600); err != nil {
		t.Fatalf("write skip.me: %v", err)
	}

	cfg := &config.Config{
		StorePath:    filepath.Join(t.TempDir(), "store.db"),
		WatchPath:    watchDir,
		DebounceTime: 10,
		Exclude:      config.ExcludeConfig{Files: []string{"skip.me"}},
	}

	sys, err := Bootstrap(cfg)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	defer sys.Shutdown()

	known, err := sys.Store.KnownPaths()
	if err != nil {
		t.Fatalf("KnownPaths: %v", err)
	}
	if len(known) != 1 || known[0] != filepath.Join(watchDir, "a.txt") {
		t.Fatalf("expected only a.txt seeded, got %v", known)
	}
}
