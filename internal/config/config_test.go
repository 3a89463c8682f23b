package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, toml string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "autostash.toml")
	if err := os.WriteFile(path, []byte(toml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	watchDir := t.TempDir()
	storeDir := t.TempDir()
	path := writeConfig(t, `
store_path = "`+filepath.Join(storeDir, "store.db")+`"
watch_path = "`+watchDir+`"
debounce_time = 250

[exclude]
files = [".DS_Store"]
paths = [".git", "node_modules"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DebounceTime != 250 {
		t.Fatalf("expected debounce_time 250, got %d", cfg.DebounceTime)
	}
	if !cfg.Exclude.GitignoreOrDefault() {
		t.Fatal("expected gitignore supplement to default true")
	}
	if len(cfg.Exclude.Paths) != 2 {
		t.Fatalf("expected 2 excluded paths, got %v", cfg.Exclude.Paths)
	}
}

func TestLoadMissingWatchPath(t *testing.T) {
	path := writeConfig(t, `
store_path = "/tmp/store.db"
watch_path = ""
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing watch_path")
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for nonexistent config file")
	}
}

func TestGitignoreDisabled(t *testing.T) {
	watchDir := t.TempDir()
	path := writeConfig(t, `
store_path = "`+filepath.Join(t.TempDir(), "store.db")+`"
watch_path = "`+watchDir+`"

[exclude]
gitignore = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Exclude.GitignoreOrDefault() {
		t.Fatal("expected gitignore supplement disabled")
	}
}
