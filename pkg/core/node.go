package core

// NodeType identifies one of the pipeline node kinds.
type NodeType string

// Built-in node types.
const (
	NodePrerequisite     NodeType = "prerequisite"
	NodePreCheck         NodeType = "preCheck"
	NodeAtomicAnalysis   NodeType = "atomicAnalysis"
	NodeDataModel        NodeType = "dataModel"
	NodeAnalysisResult   NodeType = "analysisResult"
	NodeAnalysisResource NodeType = "analysisResource"
)

// String returns the wire name of the type.
func (t NodeType) String() string {
	return string(t)
}

// Well-known keys inside node data.
const (
	DataKeyID          = "id"
	DataKeyTitle       = "title"
	DataKeyType        = "type"
	DataKeyDescription = "description"
	DataKeyIsExpanded  = "isExpanded"
)

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p offset by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// NodeStyle carries transient presentation state computed by the engine.
type NodeStyle struct {
	// Opacity is 0 when unset, which renders fully opaque.
	Opacity float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`
}

// Node is a positioned, typed record on the canvas.
//
// Data is a plain value: behaviour (change and delete handlers) lives in the
// owning workspace and addresses nodes by id.
type Node struct {
	ID       string    `json:"id" yaml:"id"`
	Type     NodeType  `json:"type" yaml:"type"`
	Position Position  `json:"position" yaml:"position"`
	Data     Data      `json:"data" yaml:"data"`
	Selected bool      `json:"selected,omitempty" yaml:"selected,omitempty"`
	Style    NodeStyle `json:"style,omitzero" yaml:"style,omitempty"`
}

// Kind resolves the node's semantic type. Documents written by older editor
// revisions use a generic canvas type and carry the real one in data.type.
func (n Node) Kind() NodeType {
	if t := n.Data.String(DataKeyType); t != "" {
		return NodeType(t)
	}
	return n.Type
}

// Expanded reports the node's expansion flag; absent means expanded.
func (n Node) Expanded() bool {
	v, ok := n.Data[DataKeyIsExpanded].(bool)
	return !ok || v
}

// Opacity returns the effective opacity of the node.
func (n Node) Opacity() float64 {
	if n.Style.Opacity == 0 {
		return 1
	}
	return n.Style.Opacity
}

// Clone returns a deep copy that shares no mutable state with n.
func (n Node) Clone() Node {
	n.Data = n.Data.Clone()
	return n
}

// Data is the free-form field set of a node.
type Data map[string]any

// String returns the string value stored under key, or "".
func (d Data) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Clone returns a deep copy of d.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	return Data(cloneMap(d))
}

// With returns a copy of d with key set to value.
func (d Data) With(key string, value any) Data {
	out := d.Clone()
	if out == nil {
		out = Data{}
	}
	out[key] = cloneValue(value)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Data:
		return Data(cloneMap(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
