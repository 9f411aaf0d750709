package canvas

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

// Handle positions on a node. Edges leave through source handles and
// arrive through target handles.
const (
	HandleTop    = "top"
	HandleLeft   = "left"
	HandleRight  = "right"
	HandleBottom = "bottom"
)

// HandleID returns the id of a node's handle at side.
func HandleID(nodeID, side string) string {
	return nodeID + "-" + side
}

// SourceHandles returns the handles an edge may leave nodeID through.
func SourceHandles(nodeID string) []string {
	return []string{HandleID(nodeID, HandleRight), HandleID(nodeID, HandleBottom)}
}

// TargetHandles returns the handles an edge may enter nodeID through.
func TargetHandles(nodeID string) []string {
	return []string{HandleID(nodeID, HandleTop), HandleID(nodeID, HandleLeft)}
}

// EdgeID derives the id of the edge a connection produces. Two connections
// with the same endpoints and handles share an id.
func EdgeID(c core.Connection) string {
	return fmt.Sprintf("reactflow__edge-%s%s-%s%s", c.Source, c.SourceHandle, c.Target, c.TargetHandle)
}

// HasConnection reports whether edges already hold an edge for c.
func HasConnection(edges []core.Edge, c core.Connection) bool {
	for _, e := range edges {
		if e.Source == c.Source && e.Target == c.Target &&
			e.SourceHandle == c.SourceHandle && e.TargetHandle == c.TargetHandle {
			return true
		}
	}
	return false
}

// WithoutIncident returns edges minus every edge touching one of ids.
func WithoutIncident(edges []core.Edge, ids ...string) []core.Edge {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]core.Edge, 0, len(edges))
	for _, e := range edges {
		_, src := drop[e.Source]
		_, dst := drop[e.Target]
		if src || dst {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Handles returns every handle of nodeID: targets first, then sources.
func Handles(nodeID string) []string {
	return append(TargetHandles(nodeID), SourceHandles(nodeID)...)
}

// IsSourceHandle reports whether handle is a source handle of nodeID.
// An empty handle is accepted for connections made without explicit handles.
func IsSourceHandle(nodeID, handle string) bool {
	return handle == "" || slices.Contains(SourceHandles(nodeID), handle)
}

// IsTargetHandle reports whether handle is a target handle of nodeID.
func IsTargetHandle(nodeID, handle string) bool {
	return handle == "" || slices.Contains(TargetHandles(nodeID), handle)
}

// DefaultEdgeType is the edge renderer assigned to new connections.
const DefaultEdgeType = "smoothstep"
