package registry

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

// ActiveFields returns the columns relevant to a node's current data. For a
// data model the parse type selects the subset; every other type uses all
// of its columns.
func (s TypeSpec) ActiveFields(data core.Data) []FieldSpec {
	if s.Type != core.NodeDataModel {
		return s.Fields
	}
	names := ParseTypeFields(data.String("parseType"))
	out := make([]FieldSpec, 0, len(names))
	for _, n := range names {
		if f, ok := s.Field(n); ok {
			out = append(out, f)
		}
	}
	return out
}

// ParseTypeFields lists the data model columns a parse type exposes.
func ParseTypeFields(parseType string) []string {
	base := []string{"modelId", "parseType"}
	switch parseType {
	case ParseMultiTable:
		return append(base, "joinType", "joinFields", "extraOperation")
	case ParseCustomTable, ParseChipregTable:
		return append(base, "command", "parameters", "systemParams", "tableHeader", "extraOperation")
	case ParseCtxTable:
		return append(base, "command", "parameters", "systemParams", "extraOperation")
	default:
		return append(base, "command", "parameters", "systemParams", "startMark", "endMark", "lineRegex", "tableHeader", "extraOperation")
	}
}

// PrerequisiteFields is the typed view of a prerequisite.
type PrerequisiteFields struct {
	CaseID              string `json:"caseId"`
	IsEnabled           bool   `json:"isEnabled"`
	DevicePrerequisite  string `json:"devicePrerequisite"`
	SubRackPrerequisite string `json:"subRackPrerequisite"`
	BoardPrerequisite   string `json:"boardPrerequisite"`
}

// PreCheckFields is the typed view of a pre-check.
type PreCheckFields struct {
	AnalysisItemID string `json:"analysisItemId"`
	CheckCondition string `json:"checkCondition"`
}

// AtomicAnalysisFields is the typed view of an atomic analysis.
type AtomicAnalysisFields struct {
	AtomicID         string `json:"atomicId"`
	AnalysisType     string `json:"analysisType"`
	IgnoreResult     bool   `json:"ignoreResult"`
	AnalysisRule     string `json:"analysisRule"`
	ParameterRefresh string `json:"parameterRefresh"`
}

// AnalysisResultFields is the typed view of an analysis result.
type AnalysisResultFields struct {
	ResultID        string `json:"resultId"`
	SeverityLevel   string `json:"severityLevel"`
	WeightValue     string `json:"weightValue"`
	ResultOutput    string `json:"resultOutput"`
	BranchCondition string `json:"branchCondition"`
}

// AnalysisResourceFields is the typed view of an analysis resource.
type AnalysisResourceFields struct {
	ResourceID     string `json:"resourceId"`
	ChCurrentValue string `json:"chCurrentValue"`
	ChSuggestion   string `json:"chSuggestion"`
	EnCurrentValue string `json:"enCurrentValue"`
	EnSuggestion   string `json:"enSuggestion"`
}

// DataModelFields is the typed view of a data model.
type DataModelFields struct {
	ModelID        string `json:"modelId"`
	ParseType      string `json:"parseType"`
	Command        string `json:"command"`
	Parameters     string `json:"parameters"`
	TableHeader    string `json:"tableHeader"`
	StartMark      string `json:"startMark"`
	EndMark        string `json:"endMark"`
	LineRegex      string `json:"lineRegex"`
	SystemParams   string `json:"systemParams"`
	JoinType       string `json:"joinType"`
	JoinFields     string `json:"joinFields"`
	ExtraOperation string `json:"extraOperation"`
}

// Decode copies node data or a row into a typed field struct. Unknown keys
// are ignored and scalar kinds are converted where unambiguous.
func Decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}

// Typed decodes data into the field struct of type t.
func Typed(t core.NodeType, data map[string]any) (any, error) {
	var out any
	switch t {
	case core.NodePrerequisite:
		out = &PrerequisiteFields{}
	case core.NodePreCheck:
		out = &PreCheckFields{}
	case core.NodeAtomicAnalysis:
		out = &AtomicAnalysisFields{}
	case core.NodeAnalysisResult:
		out = &AnalysisResultFields{}
	case core.NodeAnalysisResource:
		out = &AnalysisResourceFields{}
	case core.NodeDataModel:
		out = &DataModelFields{}
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownNodeType, t)
	}
	if err := Decode(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
