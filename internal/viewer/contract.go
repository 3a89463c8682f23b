// Package viewer defines the Viewer Contract (C8): the interface any
// external collaborator — including the bundled reference TUI — uses
// to talk to the core over the Communication Fabric.
package viewer

import "github.com/xonecas/autostash/internal/store"

// Contract is the five-endpoint interface from spec.md §4.6: an
// outbound views feed plus undo/redo/windowChange/shutdown commands.
type Contract interface {
	// Views returns the channel of published FileView lists.
	Views() <-chan []*store.FileView
	Undo(path string, count uint)
	Redo(path string, count uint)
	SetWindow(w store.TimeWindow)
	Shutdown()
}
