package registry

import (
	"sync"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

// DefaultDescription is the placeholder description of a new node.
const DefaultDescription = "Double-click to edit description"

// Parse types of a data model node.
const (
	ParseDumpTable    = "dump_table_value"
	ParseCustomTable  = "custom_table_value"
	ParseChipregTable = "chipreg_table_value"
	ParseMultiTable   = "multi_table_value"
	ParseCtxTable     = "ctx_table_value"
)

var (
	// AnalysisTypeOptions are the analysis kinds of an atomic analysis.
	AnalysisTypeOptions = []Option{
		{Label: "Expression", Value: "expression"},
		{Label: "Raw", Value: "raw"},
		{Label: "Custom", Value: "custom"},
	}

	// SeverityOptions are the severity levels of an analysis result.
	SeverityOptions = []Option{
		{Label: "Hint", Value: "hint"},
		{Label: "Unqualified", Value: "unqualified"},
		{Label: "Severely unqualified", Value: "severely_unqualified"},
	}

	// ParseTypeOptions are the parse-type discriminants of a data model.
	ParseTypeOptions = []Option{
		{Label: ParseDumpTable, Value: ParseDumpTable},
		{Label: ParseCustomTable, Value: ParseCustomTable},
		{Label: ParseChipregTable, Value: ParseChipregTable},
		{Label: ParseMultiTable, Value: ParseMultiTable},
		{Label: ParseCtxTable, Value: ParseCtxTable},
	}

	// JoinTypeOptions are the join strategies of a multi-table data model.
	JoinTypeOptions = []Option{
		{Label: "Left join", Value: "left_join"},
		{Label: "Right join", Value: "right_join"},
		{Label: "Inner join", Value: "inner_join"},
		{Label: "Outer join", Value: "outer_join"},
		{Label: "Vertical join", Value: "vertical_join"},
	}
)

func text(name, label string) FieldSpec {
	return FieldSpec{Name: name, Label: label, Kind: KindText, Default: ""}
}

func builtinSpecs() []TypeSpec {
	return []TypeSpec{
		{
			Type:        core.NodePrerequisite,
			Label:       "Prerequisite",
			Color:       "#e6f4ff",
			BorderColor: "#69b1ff",
			Icon:        "📋",
			TableBacked: true,
			Fields: []FieldSpec{
				text("caseId", "Case ID"),
				{Name: "isEnabled", Label: "Enabled", Kind: KindBool, Default: true},
				text("devicePrerequisite", "Device prerequisite"),
				text("subRackPrerequisite", "Sub-rack prerequisite"),
				text("boardPrerequisite", "Board prerequisite"),
			},
		},
		{
			Type:        core.NodePreCheck,
			Label:       "Pre-check",
			Color:       "#fff7e6",
			BorderColor: "#ffd591",
			Icon:        "🔍",
			TableBacked: true,
			Fields: []FieldSpec{
				text("analysisItemId", "Analysis item ID"),
				text("checkCondition", "Check condition"),
			},
		},
		{
			Type:        core.NodeAtomicAnalysis,
			Label:       "Atomic Analysis",
			Color:       "#f6ffed",
			BorderColor: "#b7eb8f",
			Icon:        "⚛️",
			TableBacked: true,
			Fields: []FieldSpec{
				text("atomicId", "Atomic ID"),
				{Name: "analysisType", Label: "Analysis type", Kind: KindSelect, Default: "expression", Options: AnalysisTypeOptions},
				{Name: "ignoreResult", Label: "Ignore result", Kind: KindBool, Default: false},
				text("analysisRule", "Analysis rule"),
				text("parameterRefresh", "Parameter refresh"),
			},
		},
		{
			Type:        core.NodeAnalysisResult,
			Label:       "Analysis Result",
			Color:       "#f9f0ff",
			BorderColor: "#d3adf7",
			Icon:        "📊",
			TableBacked: true,
			Fields: []FieldSpec{
				text("resultId", "Result ID"),
				{Name: "severityLevel", Label: "Severity", Kind: KindSelect, Default: "hint", Options: SeverityOptions},
				text("weightValue", "Weight"),
				text("resultOutput", "Result output"),
				text("branchCondition", "Branch condition"),
			},
		},
		{
			Type:        core.NodeAnalysisResource,
			Label:       "Analysis Resource",
			Color:       "#fff2f0",
			BorderColor: "#ffccc7",
			Icon:        "📎",
			TableBacked: true,
			Fields: []FieldSpec{
				text("resourceId", "Resource ID"),
				text("chCurrentValue", "Current value (zh)"),
				text("chSuggestion", "Suggestion (zh)"),
				text("enCurrentValue", "Current value (en)"),
				text("enSuggestion", "Suggestion (en)"),
			},
		},
		{
			Type:        core.NodeDataModel,
			Label:       "Data Model",
			Color:       "#e6fffb",
			BorderColor: "#87e8de",
			Icon:        "💾",
			TableBacked: true,
			Fields: []FieldSpec{
				text("modelId", "Model ID"),
				{Name: "parseType", Label: "Parse type", Kind: KindSelect, Default: ParseDumpTable, Options: ParseTypeOptions},
				text("command", "Command"),
				text("parameters", "Parameters"),
				text("tableHeader", "Table header"),
				text("startMark", "Start mark"),
				text("endMark", "End mark"),
				text("lineRegex", "Line regex"),
				text("systemParams", "System parameters"),
				{Name: "joinType", Label: "Join type", Kind: KindSelect, Default: "left_join", Options: JoinTypeOptions},
				text("joinFields", "Join fields"),
				text("extraOperation", "Extra operation"),
			},
		},
	}
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Builtin returns a new registry holding the six pipeline node types.
func Builtin() *Registry {
	r := New()
	for _, spec := range builtinSpecs() {
		r.Register(spec)
	}
	return r
}

// Default returns the shared built-in registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = Builtin()
	})
	return defaultReg
}
