package core

// EdgeStyle is the stroke treatment of an edge.
type EdgeStyle struct {
	Stroke          string  `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	StrokeWidth     float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	StrokeDasharray string  `json:"strokeDasharray,omitempty" yaml:"strokeDasharray,omitempty"`
}

// Dashed reports whether the stroke is dashed.
func (s EdgeStyle) Dashed() bool {
	return s.StrokeDasharray != ""
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID           string    `json:"id" yaml:"id"`
	Source       string    `json:"source" yaml:"source"`
	Target       string    `json:"target" yaml:"target"`
	SourceHandle string    `json:"sourceHandle" yaml:"sourceHandle"`
	TargetHandle string    `json:"targetHandle" yaml:"targetHandle"`
	Type         string    `json:"type" yaml:"type"`
	Style        EdgeStyle `json:"style" yaml:"style"`
	Selected     bool      `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// Touches reports whether the edge is incident to nodeID.
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Connection is a candidate edge produced by a drag-to-connect gesture.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}
