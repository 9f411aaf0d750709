package connect

import "github.com/leapstack-labs/leapflow/pkg/core"

// DefaultDim is the opacity given to nodes that cannot accept a connection
// from the node being dragged.
const DefaultDim = 0.2

// Highlight computes per-node opacity while a connection is dragged from
// source: 1 for legal targets and for source itself, dim otherwise. A
// non-positive dim selects DefaultDim.
func Highlight(source core.Node, nodes []core.Node, dim float64) map[string]float64 {
	if dim <= 0 || dim > 1 {
		dim = DefaultDim
	}
	out := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		switch {
		case n.ID == source.ID:
			out[n.ID] = 1
		case Allowed(source.Kind(), n.Kind()):
			out[n.ID] = 1
		default:
			out[n.ID] = dim
		}
	}
	return out
}

// Apply returns a copy of nodes with opacities from weights applied.
// Nodes absent from weights have their opacity cleared, which renders
// fully opaque.
func Apply(nodes []core.Node, weights map[string]float64) []core.Node {
	out := make([]core.Node, len(nodes))
	for i, n := range nodes {
		n.Style.Opacity = 0
		if w, ok := weights[n.ID]; ok && w < 1 {
			n.Style.Opacity = w
		}
		out[i] = n
	}
	return out
}

// Reset returns a copy of nodes with every opacity restored to 1.
func Reset(nodes []core.Node) []core.Node {
	return Apply(nodes, nil)
}
