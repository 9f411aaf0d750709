// Package workspace is the single mutation entry point for editor state.
//
// A Workspace owns the node and edge collections, the per-type tables, the
// clipboard and the collapse/expand flag. Every exported operation
// validates its input in full before touching any collection, so a
// rejected operation leaves the state exactly as it was. Table-backed
// nodes and their rows are kept paired by id.
//
// A Workspace is not safe for concurrent use. Surfaces that share one
// across goroutines serialize access themselves.
package workspace

import (
	"log/slog"

	"github.com/leapstack-labs/leapflow/internal/canvas"
	"github.com/leapstack-labs/leapflow/internal/connect"
	"github.com/leapstack-labs/leapflow/internal/nodeid"
	"github.com/leapstack-labs/leapflow/internal/registry"
	"github.com/leapstack-labs/leapflow/internal/tables"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

// DefaultPasteOffset is added to the position of every pasted node.
var DefaultPasteOffset = core.Position{X: 50, Y: 50}

// IDSource issues node ids.
type IDSource interface {
	New(nodeType string) string
}

// Config holds workspace configuration. The zero value is usable.
type Config struct {
	// Registry is the type catalogue (defaults to registry.Default()).
	Registry *registry.Registry
	// IDs issues node ids (defaults to a fresh nodeid.Generator).
	IDs IDSource
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
	// PasteOffset overrides DefaultPasteOffset when set. A zero offset
	// pastes in place.
	PasteOffset *core.Position
	// DimOpacity is the opacity of illegal targets during a connection drag.
	DimOpacity float64
}

// Workspace is the editor state aggregate.
type Workspace struct {
	reg    *registry.Registry
	ids    IDSource
	logger *slog.Logger

	nodes  []core.Node
	edges  []core.Edge
	tables *tables.Store

	clipboard   []core.Node
	pasteOffset core.Position
	dim         float64

	// dragSource is the node a connection is being dragged from.
	dragSource string

	allExpanded bool
	// toggled holds per-node flags captured by the last ToggleExpandAll,
	// or nil when a second toggle should overwrite instead of restore.
	toggled map[string]bool

	listeners []func(Event)
}

// New creates an empty workspace.
func New(cfg Config) *Workspace {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	reg := cfg.Registry
	if reg == nil {
		reg = registry.Default()
	}
	ids := cfg.IDs
	if ids == nil {
		ids = nodeid.NewGenerator()
	}
	offset := DefaultPasteOffset
	if cfg.PasteOffset != nil {
		offset = *cfg.PasteOffset
	}
	dim := cfg.DimOpacity
	if dim <= 0 || dim > 1 {
		dim = connect.DefaultDim
	}
	return &Workspace{
		reg:         reg,
		ids:         ids,
		logger:      logger,
		tables:      tables.New(),
		pasteOffset: offset,
		dim:         dim,
		allExpanded: true,
	}
}

// Registry returns the type catalogue the workspace validates against.
func (w *Workspace) Registry() *registry.Registry {
	return w.reg
}

// Nodes returns a copy of the node collection in canvas order.
func (w *Workspace) Nodes() []core.Node {
	return cloneNodes(w.nodes)
}

// Edges returns a copy of the edge collection.
func (w *Workspace) Edges() []core.Edge {
	out := make([]core.Edge, len(w.edges))
	copy(out, w.edges)
	return out
}

// Node returns a copy of the node with the given id.
func (w *Workspace) Node(id string) (core.Node, bool) {
	i := w.indexOf(id)
	if i < 0 {
		return core.Node{}, false
	}
	return w.nodes[i].Clone(), true
}

// Rows returns a copy of the table for nt.
func (w *Workspace) Rows(nt core.NodeType) []core.Row {
	return w.tables.Rows(nt)
}

// Row returns a copy of the row keyed by key in the table for nt.
func (w *Workspace) Row(nt core.NodeType, key string) (core.Row, bool) {
	return w.tables.Row(nt, key)
}

// Selected returns copies of the selected nodes.
func (w *Workspace) Selected() []core.Node {
	return cloneNodes(canvas.Selected(w.nodes))
}

// AllExpanded reports the value last written by a collapse/expand-all.
func (w *Workspace) AllExpanded() bool {
	return w.allExpanded
}

// Dragging returns the id of the node a connection is being dragged from.
func (w *Workspace) Dragging() (string, bool) {
	return w.dragSource, w.dragSource != ""
}

// Snapshot returns a deep copy of the full state, transient attributes
// such as selection and opacity included.
func (w *Workspace) Snapshot() *core.Document {
	return &core.Document{
		Nodes:  cloneNodes(w.nodes),
		Edges:  w.Edges(),
		Tables: w.tables.Tables(),
	}
}

func (w *Workspace) indexOf(id string) int {
	for i, n := range w.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) hasEdge(id string) bool {
	for _, e := range w.edges {
		if e.ID == id {
			return true
		}
	}
	return false
}

// spec resolves the registry entry of a node, by its semantic kind.
func (w *Workspace) spec(n core.Node) (registry.TypeSpec, bool) {
	return w.reg.Lookup(n.Kind())
}

func cloneNodes(nodes []core.Node) []core.Node {
	out := make([]core.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
