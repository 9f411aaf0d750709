package workspace

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leapflow/internal/canvas"
	"github.com/leapstack-labs/leapflow/internal/connect"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

// DropNode creates a node of the named type at pos, with its table row.
// An unknown type is rejected without mutation.
func (w *Workspace) DropNode(nodeType string, pos core.Position) (core.Node, error) {
	spec, err := w.reg.Resolve(nodeType)
	if err != nil {
		w.logger.Warn("drop rejected", slog.String("type", nodeType), slog.String("error", err.Error()))
		return core.Node{}, fmt.Errorf("drop: %w", err)
	}

	id := w.ids.New(string(spec.Type))
	if w.indexOf(id) >= 0 {
		return core.Node{}, fmt.Errorf("drop %s: %w: %s", spec.Type, core.ErrDuplicateID, id)
	}

	node := core.Node{
		ID:       id,
		Type:     spec.Type,
		Position: pos,
		Data:     spec.InitialData(id),
	}
	if spec.TableBacked {
		if err := w.tables.Insert(spec.Type, spec.RowFromData(id, node.Data)); err != nil {
			return core.Node{}, fmt.Errorf("drop %s: %w", spec.Type, err)
		}
	}
	w.nodes = append(w.nodes, node)

	w.logger.Info("node dropped", slog.String("id", id), slog.String("type", string(spec.Type)))
	w.emit(OpDrop, id)
	return node.Clone(), nil
}

// OnNodesChange applies a batch of canvas changes. The batch is validated
// as a whole first. Removed nodes are cascaded (row and incident edges)
// before the node collection is updated; added nodes receive a row built
// from their data.
func (w *Workspace) OnNodesChange(changes []canvas.NodeChange) error {
	if len(changes) == 0 {
		return nil
	}
	if err := w.checkNodeChanges(changes); err != nil {
		w.logger.Warn("node changes rejected", slog.String("error", err.Error()))
		return err
	}

	removed := canvas.RemovedNodeIDs(changes)
	for _, id := range removed {
		if i := w.indexOf(id); i >= 0 {
			w.cascade(w.nodes[i])
		}
	}

	w.nodes = canvas.ApplyNodeChanges(changes, w.nodes)

	var touched []string
	for _, c := range changes {
		switch c.Type {
		case canvas.ChangeAdd:
			w.pairRow(*c.Item, false)
			touched = append(touched, c.Item.ID)
		case canvas.ChangeReplace:
			w.pairRow(*c.Item, true)
			touched = append(touched, c.Item.ID)
		case canvas.ChangeRemove:
			touched = append(touched, c.ID)
		}
	}
	if len(removed) > 0 {
		w.pruneOrphans()
		w.forgetToggle()
	}

	w.emit(OpNodesChange, touched...)
	return nil
}

func (w *Workspace) checkNodeChanges(changes []canvas.NodeChange) error {
	live := make(map[string]core.NodeType, len(w.nodes))
	for _, n := range w.nodes {
		live[n.ID] = n.Kind()
	}

	for _, c := range changes {
		switch c.Type {
		case canvas.ChangeAdd:
			if c.Item == nil || c.Item.ID == "" {
				return fmt.Errorf("add change: %w: missing node", core.ErrInvalidValue)
			}
			if _, ok := live[c.Item.ID]; ok {
				return fmt.Errorf("add change: %w: %s", core.ErrDuplicateID, c.Item.ID)
			}
			if _, ok := w.spec(*c.Item); !ok {
				return fmt.Errorf("add change %s: %w: %s", c.Item.ID, core.ErrUnknownNodeType, c.Item.Kind())
			}
			// Later changes in the batch may address the new node.
			live[c.Item.ID] = c.Item.Kind()
		case canvas.ChangeReplace:
			kind, ok := live[c.ID]
			if !ok {
				return fmt.Errorf("replace change: %w: %s", core.ErrNodeNotFound, c.ID)
			}
			if c.Item == nil || c.Item.ID != c.ID || c.Item.Kind() != kind {
				return fmt.Errorf("replace change %s: %w: item must keep id and type", c.ID, core.ErrInvalidValue)
			}
		case canvas.ChangePosition, canvas.ChangeSelect, canvas.ChangeDimensions, canvas.ChangeRemove:
			if _, ok := live[c.ID]; !ok {
				return fmt.Errorf("%s change: %w: %s", c.Type, core.ErrNodeNotFound, c.ID)
			}
		default:
			return fmt.Errorf("%w: unknown change type %q", core.ErrInvalidValue, c.Type)
		}
	}
	return nil
}

// pairRow creates or refreshes the row paired with n from its data.
func (w *Workspace) pairRow(n core.Node, refresh bool) {
	spec, ok := w.spec(n)
	if !ok || !spec.TableBacked {
		return
	}
	kind := spec.Type
	row := spec.RowFromData(n.ID, n.Data)
	if w.tables.Has(kind, n.ID) {
		if refresh {
			_ = w.tables.Replace(kind, row)
		}
		return
	}
	// Keys are unique by the preceding checks.
	_ = w.tables.Insert(kind, row)
}

// OnEdgesChange applies a batch of edge changes. Removing an edge has no
// cascade. Added edges pass the same gate as Connect.
func (w *Workspace) OnEdgesChange(changes []canvas.EdgeChange) error {
	if len(changes) == 0 {
		return nil
	}
	changes = slices.Clone(changes)
	added := make(map[string]bool)
	for i, c := range changes {
		switch c.Type {
		case canvas.ChangeAdd, canvas.ChangeReplace:
			if c.Item == nil {
				return fmt.Errorf("%s edge change: %w: missing edge", c.Type, core.ErrInvalidValue)
			}
			if c.Type == canvas.ChangeReplace && (!w.hasEdge(c.ID) || c.Item.ID != c.ID) {
				return fmt.Errorf("replace edge %s: %w", c.ID, core.ErrEdgeNotFound)
			}
			if c.Type == canvas.ChangeAdd && (w.hasEdge(c.Item.ID) || added[c.Item.ID]) {
				return fmt.Errorf("add edge: %w: %s", core.ErrDuplicateID, c.Item.ID)
			}
			style, err := w.gate(c.Item.Source, c.Item.Target)
			if err != nil {
				return err
			}
			item := *c.Item
			item.Style = style
			changes[i].Item = &item
			added[c.Item.ID] = true
		case canvas.ChangeSelect, canvas.ChangeRemove:
			if !w.hasEdge(c.ID) && !added[c.ID] {
				return fmt.Errorf("%s edge change: %w: %s", c.Type, core.ErrEdgeNotFound, c.ID)
			}
		default:
			return fmt.Errorf("%w: unknown change type %q", core.ErrInvalidValue, c.Type)
		}
	}

	w.edges = canvas.ApplyEdgeChanges(changes, w.edges)
	w.emit(OpEdgesChange)
	return nil
}

// Connect validates a candidate edge and appends it. Rejections wrap
// core.ErrInvalidConnection (or core.ErrNodeNotFound for missing
// endpoints) and leave the edge collection untouched.
func (w *Workspace) Connect(c core.Connection) (core.Edge, error) {
	style, err := w.gate(c.Source, c.Target)
	if err == nil {
		err = w.checkHandles(c)
	}
	if err != nil {
		w.logger.Info("connection rejected",
			slog.String("source", c.Source),
			slog.String("target", c.Target),
			slog.String("reason", connect.UserMessage(err)))
		return core.Edge{}, err
	}

	edge := core.Edge{
		ID:           canvas.EdgeID(c),
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: c.SourceHandle,
		TargetHandle: c.TargetHandle,
		Type:         canvas.DefaultEdgeType,
		Style:        style,
	}
	w.edges = append(w.edges, edge)

	w.emit(OpConnect, c.Source, c.Target)
	return edge, nil
}

// gate checks that both endpoints exist, differ, and form an admissible
// type pair. It returns the style the edge is drawn with.
func (w *Workspace) gate(source, target string) (core.EdgeStyle, error) {
	si, ti := w.indexOf(source), w.indexOf(target)
	if si < 0 {
		return core.EdgeStyle{}, fmt.Errorf("connect: source %w: %s", core.ErrNodeNotFound, source)
	}
	if ti < 0 {
		return core.EdgeStyle{}, fmt.Errorf("connect: target %w: %s", core.ErrNodeNotFound, target)
	}
	src, tgt := w.nodes[si].Kind(), w.nodes[ti].Kind()
	if source == target {
		return core.EdgeStyle{}, &connect.RejectionError{Source: src, Target: tgt, Message: "a node cannot connect to itself"}
	}
	return connect.Validate(src, tgt)
}

func (w *Workspace) checkHandles(c core.Connection) error {
	src, _ := w.Node(c.Source)
	tgt, _ := w.Node(c.Target)
	if !canvas.IsSourceHandle(c.Source, c.SourceHandle) || !canvas.IsTargetHandle(c.Target, c.TargetHandle) {
		return &connect.RejectionError{Source: src.Kind(), Target: tgt.Kind(), Message: "edges must leave a source handle and enter a target handle"}
	}
	if canvas.HasConnection(w.edges, c) {
		return &connect.RejectionError{Source: src.Kind(), Target: tgt.Kind(), Message: "these nodes are already connected"}
	}
	return nil
}

// ConnectStart dims every node that cannot accept a connection from the
// node with the given id.
func (w *Workspace) ConnectStart(nodeID string) error {
	i := w.indexOf(nodeID)
	if i < 0 {
		return fmt.Errorf("connect start: %w: %s", core.ErrNodeNotFound, nodeID)
	}
	weights := connect.Highlight(w.nodes[i], w.nodes, w.dim)
	w.nodes = connect.Apply(w.nodes, weights)
	w.dragSource = nodeID
	w.emit(OpConnectStart, nodeID)
	return nil
}

// ConnectEnd restores every node's opacity, whatever the drag's outcome.
func (w *Workspace) ConnectEnd() {
	w.nodes = connect.Reset(w.nodes)
	w.dragSource = ""
	w.emit(OpConnectEnd)
}

// DeleteNode removes a node with its row and incident edges in one step,
// then prunes any orphaned rows.
func (w *Workspace) DeleteNode(id string) error {
	i := w.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete: %w: %s", core.ErrNodeNotFound, id)
	}
	w.cascade(w.nodes[i])
	w.nodes = canvas.ApplyNodeChanges([]canvas.NodeChange{{Type: canvas.ChangeRemove, ID: id}}, w.nodes)
	w.pruneOrphans()
	w.forgetToggle()

	w.logger.Info("node deleted", slog.String("id", id))
	w.emit(OpDelete, id)
	return nil
}

// cascade removes the row paired with n and every edge incident to it.
func (w *Workspace) cascade(n core.Node) {
	w.tables.Remove(n.Kind(), n.ID)
	w.edges = canvas.WithoutIncident(w.edges, n.ID)
	if w.dragSource == n.ID {
		w.dragSource = ""
	}
}

// pruneOrphans drops rows whose key does not name a live node of the
// table's type.
func (w *Workspace) pruneOrphans() {
	kinds := make(map[string]core.NodeType, len(w.nodes))
	for _, n := range w.nodes {
		kinds[n.ID] = n.Kind()
	}
	n := w.tables.Prune(func(nt core.NodeType, key string) bool {
		kind, ok := kinds[key]
		return ok && kind == nt
	})
	if n > 0 {
		w.logger.Debug("pruned orphaned rows", slog.Int("count", n))
	}
}
