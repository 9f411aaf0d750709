package workspace

import (
	"fmt"

	"github.com/leapstack-labs/leapflow/internal/canvas"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

// SetAllExpanded overwrites every node's expansion flag.
func (w *Workspace) SetAllExpanded(expanded bool) {
	w.nodes = canvas.SetAllExpanded(w.nodes, expanded)
	w.allExpanded = expanded
	w.toggled = nil
	w.emit(OpExpand)
}

// ToggleExpandAll flips the collapse/expand-all flag and writes it to
// every node. A toggle that directly follows another restores the flags
// each node had before the first one, so toggling twice is an identity.
// It returns the new flag.
func (w *Workspace) ToggleExpandAll() bool {
	next := !w.allExpanded
	if w.toggled != nil {
		saved := w.toggled
		out := make([]core.Node, len(w.nodes))
		for i, n := range w.nodes {
			flag, ok := saved[n.ID]
			if !ok {
				flag = next
			}
			n.Data = n.Data.With(core.DataKeyIsExpanded, flag)
			out[i] = n
		}
		w.nodes = out
		w.toggled = nil
	} else {
		saved := make(map[string]bool, len(w.nodes))
		for _, n := range w.nodes {
			saved[n.ID] = n.Expanded()
		}
		w.nodes = canvas.SetAllExpanded(w.nodes, next)
		w.toggled = saved
	}
	w.allExpanded = next
	w.emit(OpExpand)
	return next
}

// SetNodeExpanded sets the expansion flag of a single node.
func (w *Workspace) SetNodeExpanded(id string, expanded bool) error {
	if w.indexOf(id) < 0 {
		return fmt.Errorf("expand: %w: %s", core.ErrNodeNotFound, id)
	}
	return w.UpdateNodeField(id, core.DataKeyIsExpanded, expanded)
}

// forgetToggle makes the next ToggleExpandAll overwrite instead of restore.
func (w *Workspace) forgetToggle() {
	w.toggled = nil
}
