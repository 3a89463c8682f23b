package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/autostash/internal/config"
	"github.com/xonecas/autostash/internal/errkind"
	"github.com/xonecas/autostash/internal/fabric"
	"github.com/xonecas/autostash/internal/store"
	"github.com/xonecas/autostash/internal/watch"
)

// System bundles everything Bootstrap wires together: the Store, the
// Fabric, and the two long-lived tasks it starts.
type System struct {
	Store   *store.Store
	Fabric  *fabric.Fabric
	Watcher *watch.Watcher
	Handler *Handler
}

// Bootstrap implements C7: load or initialize the Store from the
// watched tree, wire the Communication Fabric, and start the File
// Watcher and Event Handler as long-lived goroutines. Bootstrap does
// not return until both are started; callers stop the system by calling
// sys.Fabric.Close() (or sys.Shutdown()).
func Bootstrap(cfg *config.Config) (*System, error) {
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open store: %v", errkind.ErrStoreIO, err)
	}

	excl, err := buildExclusions(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	if err := seedTree(st, cfg.WatchPath, excl); err != nil {
		st.Close()
		return nil, err
	}

	fab := fabric.New()

	w, err := watch.New(cfg.WatchPath, excl, cfg.DebounceDuration(), fab)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("%w: create watcher: %v", errkind.ErrFileIO, err)
	}
	if err := w.AddDirs(); err != nil {
		st.Close()
		return nil, fmt.Errorf("%w: register watch directories: %v", errkind.ErrFileIO, err)
	}

	h := NewHandler(st, fab)

	go w.Run()
	go h.Run()

	return &System{Store: st, Fabric: fab, Watcher: w, Handler: h}, nil
}

// Shutdown broadcasts the shutdown signal and releases the Store. It
// does not wait for the File Watcher/Event Handler goroutines to
// observe the signal and return.
func (s *System) Shutdown() error {
	s.Fabric.Close()
	return s.Store.Close()
}

func buildExclusions(cfg *config.Config) (*watch.Exclusions, error) {
	var gi *watch.GitignoreRules
	if cfg.Exclude.GitignoreOrDefault() {
		m, err := watch.LoadGitignoreRules(cfg.WatchPath)
		if err != nil {
			return nil, fmt.Errorf("%w: load .gitignore: %v", errkind.ErrConfig, err)
		}
		gi = m
	}
	return watch.NewExclusions(cfg.Exclude.Files, cfg.Exclude.Paths, gi), nil
}

// seedTree walks watchPath, seeding the Store with the current content
// of every included regular file that has no recorded history yet.
// Already-known paths are left untouched, so Bootstrap on a pre-existing
// store behaves as "load", not "reinitialize".
func seedTree(st *store.Store, watchPath string, excl *watch.Exclusions) error {
	known, err := st.KnownPaths()
	if err != nil {
		return fmt.Errorf("%w: list known paths: %v", errkind.ErrStoreIO, err)
	}
	seen := make(map[string]bool, len(known))
	for _, p := range known {
		seen[p] = true
	}

	return filepath.WalkDir(watchPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("walk error during bootstrap scan, skipping")
			return nil
		}
		if d.IsDir() {
			if path != watchPath && excl.ExcludesDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if excl.ExcludesFile(path) || seen[path] {
			return nil
		}

		lines, err := readLines(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to read file during bootstrap scan, skipping")
			return nil
		}
		if err := st.Seed(path, lines); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to seed store, skipping")
		}
		return nil
	})
}

func readLines(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := string(content)
	if len(s) == 0 {
		return nil, nil
	}
	if s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines, nil
}
