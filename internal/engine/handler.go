// Package engine is the Event Handler (C4): the single dispatch loop
// that owns the Store and reacts to filesystem events and viewer
// commands delivered over the Communication Fabric.
package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/xonecas/autostash/internal/delta"
	"github.com/xonecas/autostash/internal/fabric"
	"github.com/xonecas/autostash/internal/store"
)

// Handler dispatches fabric events against a Store. Its zero value is
// not usable; construct with NewHandler.
type Handler struct {
	store *store.Store
	fab   *fabric.Fabric
}

// NewHandler builds a Handler over st, reacting to events on fab.
func NewHandler(st *store.Store, fab *fabric.Fabric) *Handler {
	return &Handler{store: st, fab: fab}
}

// Run is the Event Handler dispatch loop (T2). It selects over the
// fabric's inbound channels until shutdown is signalled, per
// spec.md §9's preference for a single dispatch loop over per-channel
// goroutines plus an explicit mutex.
func (h *Handler) Run() {
	for {
		select {
		case <-h.fab.Shutdown:
			return

		case ev := <-h.fab.Writes:
			h.onWrite(ev.Path)

		case ev := <-h.fab.Removes:
			h.onRemove(ev.Path)

		case cmd := <-h.fab.Undo:
			h.onUndo(cmd.Path, cmd.Count)

		case cmd := <-h.fab.Redo:
			h.onRedo(cmd.Path, cmd.Count)

		case cmd := <-h.fab.WindowChange:
			h.store.SetWindow(cmd.Window)
			h.publish()
		}
	}
}

// onWrite implements spec.md §4.3's write reaction: read P's history,
// invoke the Diff Engine, append results, publish a fresh view.
func (h *Handler) onWrite(path string) {
	prior, err := h.store.HistoryOf(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to read history for write event")
		return
	}

	deltas, err := delta.FindDeltas(path, prior)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("diff engine failed")
		return
	}
	if len(deltas) == 0 {
		return
	}

	if err := h.store.Append(path, deltas); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to append deltas")
		return
	}
	h.publish()
}

// onRemove implements spec.md §4.3's remove reaction: record only, no
// file materialization; history is retained as-is.
func (h *Handler) onRemove(path string) {
	log.Info().Str("path", path).Msg("path removed, history retained")
	h.publish()
}

func (h *Handler) onUndo(path string, n uint) {
	if _, err := h.store.Undo(path, n); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("undo failed")
		return
	}
	h.publish()
}

func (h *Handler) onRedo(path string, n uint) {
	if _, err := h.store.Redo(path, n); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("redo failed")
		return
	}
	h.publish()
}

func (h *Handler) publish() {
	views, err := h.store.View()
	if err != nil {
		log.Warn().Err(err).Msg("failed to compute views")
		return
	}
	h.fab.PublishViews(views)
}
