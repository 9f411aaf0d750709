package workspace

import "log/slog"

// Op names a logical workspace operation.
type Op string

// Operations reported to listeners.
const (
	OpDrop         Op = "drop"
	OpNodesChange  Op = "nodes_change"
	OpEdgesChange  Op = "edges_change"
	OpConnect      Op = "connect"
	OpConnectStart Op = "connect_start"
	OpConnectEnd   Op = "connect_end"
	OpFieldChange  Op = "field_change"
	OpCellEdit     Op = "cell_edit"
	OpDelete       Op = "delete"
	OpSelect       Op = "select"
	OpCopy         Op = "copy"
	OpPaste        Op = "paste"
	OpExpand       Op = "expand"
	OpImport       Op = "import"
)

// Event describes one successful operation.
type Event struct {
	Op Op `json:"op"`
	// IDs lists the nodes the operation created, changed or removed, when
	// it addressed specific nodes.
	IDs []string `json:"ids,omitempty"`
}

// OnChange registers fn to be called after every successful operation.
// Listeners run synchronously, in registration order, after the state has
// been updated.
func (w *Workspace) OnChange(fn func(Event)) {
	w.listeners = append(w.listeners, fn)
}

func (w *Workspace) emit(op Op, ids ...string) {
	ev := Event{Op: op, IDs: ids}
	w.logger.Debug("workspace change", slog.String("op", string(op)), slog.Int("nodes", len(ids)))
	for _, fn := range w.listeners {
		fn(ev)
	}
}
