package watch

import (
	"os"
	"path/filepath"
	"testing"
)

// TestExclusionsFileBaseName covers P6: a file whose base name is in
// the excluded-file set is excluded regardless of its directory.
func TestExclusionsFileBaseName(t *testing.T) {
	e := NewExclusions([]string{".DS_Store"}, nil, nil)
	if !e.ExcludesFile("/repo/sub/.DS_Store") {
		t.Fatal("expected .DS_Store to be excluded")
	}
	if e.ExcludesFile("/repo/sub/main.go") {
		t.Fatal("expected main.go to not be excluded")
	}
}

// TestExclusionsAncestorDir covers P6: a path under an excluded
// directory is excluded no matter how deep it is nested.
func TestExclusionsAncestorDir(t *testing.T) {
	e := NewExclusions(nil, []string{"node_modules"}, nil)
	if !e.ExcludesFile("/repo/node_modules/pkg/index.js") {
		t.Fatal("expected path under node_modules to be excluded")
	}
	if e.ExcludesFile("/repo/src/index.js") {
		t.Fatal("expected path outside node_modules to not be excluded")
	}
}

func TestExclusionsDirItself(t *testing.T) {
	e := NewExclusions(nil, []string{".git"}, nil)
	if !e.ExcludesDir("/repo/.git") {
		t.Fatal("expected .git directory itself to be excluded")
	}
	if e.ExcludesDir("/repo/src") {
		t.Fatal("expected unrelated directory to not be excluded")
	}
}

func TestExclusionsNoSets(t *testing.T) {
	e := NewExclusions(nil, nil, nil)
	if e.ExcludesFile("/repo/anything.go") {
		t.Fatal("expected no exclusion with empty sets and no gitignore")
	}
}

// TestGitignoreSupplementIsAdditiveOnly covers §4.5.1: a .gitignore
// match widens exclusion beyond the literal sets but a path matched by
// neither is untouched.
func TestGitignoreSupplementIsAdditiveOnly(t *testing.T) {
	dir := t.TempDir()
	giPath := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(giPath, []byte("*.log\n/build/\n"), 0o600); err != nil {
		t.Fatalf("write .gitignore: %v", err)
	}

	rules, err := LoadGitignoreRules(dir)
	if err != nil {
		t.Fatalf("LoadGitignoreRules: %v", err)
	}

	e := NewExclusions(nil, nil, rules)
	if !e.ExcludesFile(filepath.Join(dir, "debug.log")) {
		t.Fatal("expected *.log to be excluded via gitignore supplement")
	}
	if !e.ExcludesDir(filepath.Join(dir, "build")) {
		t.Fatal("expected anchored /build/ to be excluded via gitignore supplement")
	}
	if e.ExcludesFile(filepath.Join(dir, "main.go")) {
		t.Fatal("expected main.go to not be excluded")
	}
}

func TestLoadGitignoreRulesMissingFileIsNoop(t *testing.T) {
	rules, err := LoadGitignoreRules(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("expected no error for missing .gitignore, got %v", err)
	}
	if rules.excludes("anything", false) {
		t.Fatal("expected empty rule set to never exclude")
	}
}
