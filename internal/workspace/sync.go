package workspace

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapflow/internal/canvas"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

// readOnlyFields identify a node and may not be edited in place.
var readOnlyFields = map[string]bool{
	core.DataKeyID:   true,
	core.DataKeyType: true,
}

// UpdateNodeField sets one field of a node's data from its inline form.
// Column fields are mirrored into the paired row. Every other field of the
// node and the row is preserved.
func (w *Workspace) UpdateNodeField(id, field string, value any) error {
	i := w.indexOf(id)
	if i < 0 {
		return fmt.Errorf("update field: %w: %s", core.ErrNodeNotFound, id)
	}
	node := w.nodes[i]
	spec, known := w.spec(node)

	switch {
	case field == "":
		return fmt.Errorf("update field: %w: empty name", core.ErrUnknownField)
	case readOnlyFields[field]:
		return fmt.Errorf("update field %s.%s: %w: field is read-only", id, field, core.ErrInvalidValue)
	case field == core.DataKeyIsExpanded:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("update field %s.%s: %w: expected boolean", id, field, core.ErrInvalidValue)
		}
	case known && spec.HasColumn(field):
		if err := spec.CheckValue(field, value); err != nil {
			return fmt.Errorf("update field %s: %w", id, err)
		}
	}

	w.nodes, _ = canvas.UpdateNodeField(w.nodes, id, field, value)
	if known && spec.TableBacked && spec.HasColumn(field) {
		w.mirrorToRow(spec.Type, id, field, value)
	}
	if field == core.DataKeyIsExpanded {
		w.forgetToggle()
	}

	w.emit(OpFieldChange, id)
	return nil
}

func (w *Workspace) mirrorToRow(nt core.NodeType, key, field string, value any) {
	if err := w.tables.Update(nt, key, field, value); err != nil {
		// A missing row is restored from the node.
		n, _ := w.Node(key)
		spec, _ := w.reg.Lookup(nt)
		_ = w.tables.Insert(nt, spec.RowFromData(key, n.Data))
		w.logger.Warn("restored missing row", slog.String("type", string(nt)), slog.String("key", key))
	}
}

// EditCell sets one cell of a table row and mirrors it into the paired
// node's data. Unknown columns and values of the wrong kind are rejected
// before either side changes.
func (w *Workspace) EditCell(nt core.NodeType, key, field string, value any) error {
	spec, ok := w.reg.Lookup(nt)
	if !ok || !spec.TableBacked {
		return fmt.Errorf("edit cell: %w: %s", core.ErrUnknownNodeType, nt)
	}
	if field == core.RowKey {
		return fmt.Errorf("edit cell %s/%s: %w: the key column is read-only", nt, key, core.ErrInvalidValue)
	}
	if err := spec.CheckValue(field, value); err != nil {
		return fmt.Errorf("edit cell %s/%s: %w", nt, key, err)
	}
	if !w.tables.Has(nt, key) {
		return fmt.Errorf("edit cell %s: %w: %s", nt, core.ErrRowNotFound, key)
	}

	if err := w.tables.Update(nt, key, field, value); err != nil {
		return fmt.Errorf("edit cell: %w", err)
	}
	if i := w.indexOf(key); i >= 0 && w.nodes[i].Kind() == nt {
		w.nodes, _ = canvas.UpdateNodeField(w.nodes, key, field, value)
	}

	w.emit(OpCellEdit, key)
	return nil
}

// SelectRow selects the node paired with a table row and deselects every
// other node.
func (w *Workspace) SelectRow(nt core.NodeType, key string) error {
	i := w.indexOf(key)
	if i < 0 || w.nodes[i].Kind() != nt {
		return fmt.Errorf("select %s: %w: %s", nt, core.ErrNodeNotFound, key)
	}
	w.nodes = canvas.SelectOnly(w.nodes, key)
	w.emit(OpSelect, key)
	return nil
}

// SelectNodes sets the selection to exactly the given ids.
func (w *Workspace) SelectNodes(ids ...string) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if w.indexOf(id) < 0 {
			return fmt.Errorf("select: %w: %s", core.ErrNodeNotFound, id)
		}
		want[id] = true
	}
	changes := make([]canvas.NodeChange, 0, len(w.nodes))
	for _, n := range w.nodes {
		changes = append(changes, canvas.NodeChange{Type: canvas.ChangeSelect, ID: n.ID, Selected: want[n.ID]})
	}
	w.nodes = canvas.ApplyNodeChanges(changes, w.nodes)
	w.emit(OpSelect, ids...)
	return nil
}
