// Package canvas implements the graph half of the editor state: pure
// functions that apply batches of structural changes to node and edge
// collections. Inputs are never mutated; every function returns a fresh
// slice in the original order.
package canvas

import (
	"slices"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

// ChangeType names a structural change.
type ChangeType string

// Change types emitted by the canvas widget.
const (
	ChangePosition   ChangeType = "position"
	ChangeSelect     ChangeType = "select"
	ChangeDimensions ChangeType = "dimensions"
	ChangeAdd        ChangeType = "add"
	ChangeRemove     ChangeType = "remove"
	ChangeReplace    ChangeType = "replace"
)

// NodeChange is one structural change to the node collection.
type NodeChange struct {
	Type     ChangeType     `json:"type"`
	ID       string         `json:"id,omitempty"`
	Position *core.Position `json:"position,omitempty"`
	Dragging bool           `json:"dragging,omitempty"`
	Selected bool           `json:"selected,omitempty"`
	// Item carries the node for add and replace changes.
	Item *core.Node `json:"item,omitempty"`
}

// TargetID returns the id the change addresses.
func (c NodeChange) TargetID() string {
	if c.Item != nil && (c.Type == ChangeAdd || c.Type == ChangeReplace) {
		return c.Item.ID
	}
	return c.ID
}

// EdgeChange is one structural change to the edge collection.
type EdgeChange struct {
	Type     ChangeType `json:"type"`
	ID       string     `json:"id,omitempty"`
	Selected bool       `json:"selected,omitempty"`
	Item     *core.Edge `json:"item,omitempty"`
}

// TargetID returns the id the change addresses.
func (c EdgeChange) TargetID() string {
	if c.Item != nil && (c.Type == ChangeAdd || c.Type == ChangeReplace) {
		return c.Item.ID
	}
	return c.ID
}

// RemovedNodeIDs returns the ids of every remove change, in batch order.
func RemovedNodeIDs(changes []NodeChange) []string {
	var ids []string
	for _, c := range changes {
		if c.Type == ChangeRemove {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// ApplyNodeChanges returns nodes with changes applied. Changes addressing
// unknown ids are ignored; adds are appended in batch order, and changes
// that follow an add in the batch apply to the added node.
func ApplyNodeChanges(changes []NodeChange, nodes []core.Node) []core.Node {
	byID := make(map[string][]NodeChange)
	var adds []core.Node
	for _, c := range changes {
		if c.Type == ChangeAdd {
			if c.Item != nil {
				adds = append(adds, c.Item.Clone())
				delete(byID, c.Item.ID)
			}
			continue
		}
		byID[c.ID] = append(byID[c.ID], c)
	}

	out := make([]core.Node, 0, len(nodes)+len(adds))
	for _, n := range append(slices.Clone(nodes), adds...) {
		pending, ok := byID[n.ID]
		if !ok {
			out = append(out, n.Clone())
			continue
		}
		next, keep := applyToNode(n.Clone(), pending)
		if keep {
			out = append(out, next)
		}
	}
	return out
}

func applyToNode(n core.Node, changes []NodeChange) (core.Node, bool) {
	for _, c := range changes {
		switch c.Type {
		case ChangeRemove:
			return n, false
		case ChangePosition:
			if c.Position != nil {
				n.Position = *c.Position
			}
		case ChangeSelect:
			n.Selected = c.Selected
		case ChangeReplace:
			if c.Item != nil {
				n = c.Item.Clone()
			}
		case ChangeDimensions:
			// Measured by the widget; nothing is stored.
		}
	}
	return n, true
}

// ApplyEdgeChanges returns edges with changes applied. As with nodes,
// changes that follow an add apply to the added edge.
func ApplyEdgeChanges(changes []EdgeChange, edges []core.Edge) []core.Edge {
	byID := make(map[string][]EdgeChange)
	var adds []core.Edge
	for _, c := range changes {
		if c.Type == ChangeAdd {
			if c.Item != nil {
				adds = append(adds, *c.Item)
				delete(byID, c.Item.ID)
			}
			continue
		}
		byID[c.ID] = append(byID[c.ID], c)
	}

	out := make([]core.Edge, 0, len(edges)+len(adds))
	for _, e := range append(slices.Clone(edges), adds...) {
		keep := true
		for _, c := range byID[e.ID] {
			switch c.Type {
			case ChangeRemove:
				keep = false
			case ChangeSelect:
				e.Selected = c.Selected
			case ChangeReplace:
				if c.Item != nil {
					e = *c.Item
				}
			}
		}
		if keep {
			out = append(out, e)
		}
	}
	return append(out, adds...)
}

// UpdateNodeField merges one field into a node's data, leaving every other
// field and attribute untouched. It reports whether the node was found.
func UpdateNodeField(nodes []core.Node, id, field string, value any) ([]core.Node, bool) {
	out := make([]core.Node, len(nodes))
	found := false
	for i, n := range nodes {
		if n.ID == id {
			n.Data = n.Data.With(field, value)
			found = true
			out[i] = n
			continue
		}
		out[i] = n
	}
	return out, found
}

// SetAllExpanded overwrites every node's expansion flag.
func SetAllExpanded(nodes []core.Node, expanded bool) []core.Node {
	out := make([]core.Node, len(nodes))
	for i, n := range nodes {
		n.Data = n.Data.With(core.DataKeyIsExpanded, expanded)
		out[i] = n
	}
	return out
}

// SelectOnly marks the node with id as selected and clears every other selection.
func SelectOnly(nodes []core.Node, id string) []core.Node {
	out := make([]core.Node, len(nodes))
	for i, n := range nodes {
		n.Selected = n.ID == id
		out[i] = n
	}
	return out
}

// Selected returns the selected nodes in canvas order.
func Selected(nodes []core.Node) []core.Node {
	var out []core.Node
	for _, n := range nodes {
		if n.Selected {
			out = append(out, n)
		}
	}
	return out
}

// IndexNodes maps node ids to positions in nodes.
func IndexNodes(nodes []core.Node) map[string]int {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = i
	}
	return idx
}
