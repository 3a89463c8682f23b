// Package watch is the File Watcher (C5): an fsnotify-backed debounced
// event source that forwards included regular-file writes and removes
// onto the Communication Fabric.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/autostash/internal/errkind"
	"github.com/xonecas/autostash/internal/fabric"
)

// Watcher wraps an fsnotify.Watcher with the debounce window and
// exclusion rules from spec.md §4.4/§4.5.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	excl     *Exclusions
	debounce time.Duration
	fab      *fabric.Fabric

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a Watcher rooted at root. No directory is registered
// until AddDirs is called, and no event is forwarded until Run is
// called.
func New(root string, excl *Exclusions, debounce time.Duration, fab *fabric.Fabric) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     root,
		fsw:      fsw,
		excl:     excl,
		debounce: debounce,
		fab:      fab,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// AddDirs walks root, registering every non-excluded directory with the
// underlying fsnotify watcher. Errors encountered walking a single
// entry are logged and skipped rather than aborting the walk.
func (w *Watcher) AddDirs() error {
	return filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("walk error, skipping")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.excl.ExcludesDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to watch directory")
		}
		return nil
	})
}

// Run is the File Watcher loop (T1). It blocks until the fabric's
// shutdown channel closes or the underlying event/error channels close.
func (w *Watcher) Run() {
	defer w.fsw.Close()
	defer w.stopAllTimers()

	for {
		select {
		case <-w.fab.Shutdown:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				log.Warn().Err(errkind.ErrChannelClosed).Msg("fsnotify events channel closed, stopping watcher")
				return
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				log.Warn().Err(errkind.ErrChannelClosed).Msg("fsnotify errors channel closed, stopping watcher")
				return
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	info, statErr := os.Stat(event.Name)

	switch {
	case event.Op&fsnotify.Create != 0:
		if statErr == nil && info.IsDir() {
			if !w.excl.ExcludesDir(event.Name) {
				if err := w.fsw.Add(event.Name); err != nil {
					log.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
				}
			}
			return
		}
		w.scheduleWrite(event.Name)

	case event.Op&fsnotify.Write != 0:
		if statErr == nil && info.IsDir() {
			return
		}
		w.scheduleWrite(event.Name)

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.cancelScheduledWrite(event.Name)
		w.forwardRemove(event.Name)
	}
}

// scheduleWrite implements the debounce semantics from spec.md §4.4:
// rapid successive writes to path reset a trailing timer, so only the
// quiescent final state is ever forwarded as a single write event.
func (w *Watcher) scheduleWrite(path string) {
	if w.excl.ExcludesFile(path) {
		return
	}

	w.mu.Lock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() { w.fireWrite(path) })
	w.mu.Unlock()
}

func (w *Watcher) cancelScheduledWrite(path string) {
	w.mu.Lock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
}

func (w *Watcher) fireWrite(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
		return
	}

	select {
	case w.fab.Writes <- fabric.WriteEvent{Path: path}:
	case <-w.fab.Shutdown:
	}
}

func (w *Watcher) forwardRemove(path string) {
	if w.excl.ExcludesFile(path) {
		return
	}

	select {
	case w.fab.Removes <- fabric.RemoveEvent{Path: path}:
	case <-w.fab.Shutdown:
	}
}

func (w *Watcher) stopAllTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.timers {
		t.Stop()
	}
}
