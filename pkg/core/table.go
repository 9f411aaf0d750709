package core

// RowKey is the column holding the owning node's id.
const RowKey = "key"

// Row is one record of a type-specific table. Its key equals the id of the
// node it mirrors.
type Row map[string]any

// NewRow returns an empty row keyed by key.
func NewRow(key string) Row {
	return Row{RowKey: key}
}

// Key returns the row key.
func (r Row) Key() string {
	s, _ := r[RowKey].(string)
	return s
}

// Clone returns a deep copy of r.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	return Row(cloneMap(r))
}

// TableKey returns the document key of the table backing t.
func TableKey(t NodeType) string {
	return string(t) + "Data"
}

// Tables is the wire form of every table store, one field per node type.
type Tables struct {
	PrerequisiteData     []Row `json:"prerequisiteData" yaml:"prerequisiteData"`
	PreCheckData         []Row `json:"preCheckData" yaml:"preCheckData"`
	AtomicAnalysisData   []Row `json:"atomicAnalysisData" yaml:"atomicAnalysisData"`
	AnalysisResultData   []Row `json:"analysisResultData" yaml:"analysisResultData"`
	AnalysisResourceData []Row `json:"analysisResourceData" yaml:"analysisResourceData"`
	DataModelData        []Row `json:"dataModelData" yaml:"dataModelData"`
}

// Rows returns the rows stored for t, or nil for a type without a table.
func (t *Tables) Rows(nt NodeType) []Row {
	if p := t.slot(nt); p != nil {
		return *p
	}
	return nil
}

// SetRows replaces the rows stored for nt. It reports false when nt has no table.
func (t *Tables) SetRows(nt NodeType, rows []Row) bool {
	p := t.slot(nt)
	if p == nil {
		return false
	}
	*p = rows
	return true
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (t *Tables) Normalize() {
	for _, nt := range TableTypes {
		if p := t.slot(nt); *p == nil {
			*p = []Row{}
		}
	}
}

// TableTypes lists the table-backed node types in document order.
var TableTypes = []NodeType{
	NodePrerequisite,
	NodePreCheck,
	NodeAtomicAnalysis,
	NodeAnalysisResult,
	NodeAnalysisResource,
	NodeDataModel,
}

func (t *Tables) slot(nt NodeType) *[]Row {
	switch nt {
	case NodePrerequisite:
		return &t.PrerequisiteData
	case NodePreCheck:
		return &t.PreCheckData
	case NodeAtomicAnalysis:
		return &t.AtomicAnalysisData
	case NodeAnalysisResult:
		return &t.AnalysisResultData
	case NodeAnalysisResource:
		return &t.AnalysisResourceData
	case NodeDataModel:
		return &t.DataModelData
	default:
		return nil
	}
}
