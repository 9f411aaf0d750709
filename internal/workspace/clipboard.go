package workspace

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

// Copy captures the selected nodes. With nothing selected it is a no-op
// and the previous clipboard is kept. It returns the number of nodes
// captured.
func (w *Workspace) Copy() int {
	selected := w.Selected()
	if len(selected) == 0 {
		return 0
	}
	for i := range selected {
		selected[i].Style = core.NodeStyle{}
	}
	w.clipboard = selected
	w.emit(OpCopy)
	return len(selected)
}

// ClipboardLen returns the number of nodes waiting to be pasted.
func (w *Workspace) ClipboardLen() int {
	return len(w.clipboard)
}

// Paste materializes the clipboard: every captured node gets a fresh id,
// a position shifted by the paste offset, no selection, and a new row
// holding a copy of its column values. Pasting an empty clipboard is a
// no-op. If any captured node has an unknown type nothing is pasted.
func (w *Workspace) Paste() ([]core.Node, error) {
	if len(w.clipboard) == 0 {
		return nil, nil
	}
	for _, n := range w.clipboard {
		if _, ok := w.spec(n); !ok {
			w.logger.Warn("paste rejected", slog.String("type", string(n.Kind())))
			return nil, fmt.Errorf("paste: %w: %s", core.ErrUnknownNodeType, n.Kind())
		}
	}

	taken := make(map[string]bool, len(w.nodes)+len(w.clipboard))
	for _, n := range w.nodes {
		taken[n.ID] = true
	}
	pasted := make([]core.Node, 0, len(w.clipboard))
	for _, src := range w.clipboard {
		spec, _ := w.spec(src)
		id := w.ids.New(string(spec.Type))
		if taken[id] {
			return nil, fmt.Errorf("paste: %w: %s", core.ErrDuplicateID, id)
		}
		taken[id] = true

		n := src.Clone()
		n.ID = id
		n.Position = src.Position.Add(w.pasteOffset)
		n.Selected = false
		n.Style = core.NodeStyle{}
		n.Data = n.Data.With(core.DataKeyID, id)
		pasted = append(pasted, n)
	}

	for _, n := range pasted {
		spec, _ := w.spec(n)
		if spec.TableBacked {
			// Ids are fresh, so inserts cannot collide.
			_ = w.tables.Insert(spec.Type, spec.RowFromData(n.ID, n.Data))
		}
	}
	w.nodes = append(w.nodes, pasted...)

	ids := make([]string, len(pasted))
	for i, n := range pasted {
		ids[i] = n.ID
	}
	w.logger.Info("nodes pasted", slog.Int("count", len(pasted)))
	w.emit(OpPaste, ids...)
	return cloneNodes(pasted), nil
}
