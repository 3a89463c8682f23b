// Package fabric is the Communication Fabric (C6): the set of typed
// channels the File Watcher and Viewer use to talk to the Event
// Handler, and the Event Handler uses to publish views back out.
package fabric

import (
	"sync"

	"github.com/xonecas/autostash/internal/store"
)

// WriteEvent reports a debounced write to path.
type WriteEvent struct {
	Path string
}

// RemoveEvent reports that path no longer exists on disk.
type RemoveEvent struct {
	Path string
}

// UndoCommand requests path's cursor move back by Count.
type UndoCommand struct {
	Path  string
	Count uint
}

// RedoCommand requests path's cursor move forward by Count.
type RedoCommand struct {
	Path  string
	Count uint
}

// WindowChangeCommand requests the Store's active time window change.
type WindowChangeCommand struct {
	Window store.TimeWindow
}

// Fabric is the set of channels connecting the File Watcher, the
// Viewer, and the Event Handler. Writes/Removes/Undo/Redo/WindowChange
// are inbound to the Event Handler; Views is outbound from it.
type Fabric struct {
	Writes       chan WriteEvent
	Removes      chan RemoveEvent
	Undo         chan UndoCommand
	Redo         chan RedoCommand
	WindowChange chan WindowChangeCommand
	Views        chan []*store.FileView
	Shutdown     chan struct{}

	shutdownOnce sync.Once
}

// New builds a Fabric with reasonably buffered event channels and a
// single-slot Views channel, so view publication is at-most-one-pending
// per spec.md §4.3's coalescing rule.
func New() *Fabric {
	return &Fabric{
		Writes:       make(chan WriteEvent, 64),
		Removes:      make(chan RemoveEvent, 64),
		Undo:         make(chan UndoCommand, 8),
		Redo:         make(chan RedoCommand, 8),
		WindowChange: make(chan WindowChangeCommand, 8),
		Views:        make(chan []*store.FileView, 1),
		Shutdown:     make(chan struct{}),
	}
}

// PublishViews sends views on the Views channel, replacing any
// already-pending (undelivered) view with the latest one instead of
// blocking the publisher.
func (f *Fabric) PublishViews(views []*store.FileView) {
	for {
		select {
		case f.Views <- views:
			return
		default:
			select {
			case <-f.Views:
			default:
			}
		}
	}
}

// Close broadcasts shutdown exactly once.
func (f *Fabric) Close() {
	f.shutdownOnce.Do(func() { close(f.Shutdown) })
}
