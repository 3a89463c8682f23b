package fabric

import (
	"github.com/xonecas/autostash/internal/store"
	"github.com/xonecas/autostash/internal/viewer"
)

// AsContract adapts a Fabric into a viewer.Contract for a TUI or any
// other Viewer Contract consumer.
func (f *Fabric) AsContract() viewer.Contract {
	return contractAdapter{f}
}

type contractAdapter struct{ f *Fabric }

func (c contractAdapter) Views() <-chan []*store.FileView { return c.f.Views }

func (c contractAdapter) Undo(path string, count uint) {
	c.f.Undo <- UndoCommand{Path: path, Count: count}
}

func (c contractAdapter) Redo(path string, count uint) {
	c.f.Redo <- RedoCommand{Path: path, Count: count}
}

func (c contractAdapter) SetWindow(w store.TimeWindow) {
	c.f.WindowChange <- WindowChangeCommand{Window: w}
}

func (c contractAdapter) Shutdown() { c.f.Close() }
