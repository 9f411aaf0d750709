package registry

import (
	"testing"

	"github.com/leapstack-labs/leapflow/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_PaletteOrder(t *testing.T) {
	r := Builtin()

	var got []core.NodeType
	for _, spec := range r.Types() {
		got = append(got, spec.Type)
		assert.True(t, spec.TableBacked, "%s should be table-backed", spec.Type)
	}

	assert.Equal(t, []core.NodeType{
		core.NodePrerequisite,
		core.NodePreCheck,
		core.NodeAtomicAnalysis,
		core.NodeAnalysisResult,
		core.NodeAnalysisResource,
		core.NodeDataModel,
	}, got)
}

func TestRegistry_Register_ReplacesInPlace(t *testing.T) {
	r := Builtin()
	spec, ok := r.Lookup(core.NodePreCheck)
	require.True(t, ok)

	spec.Label = "Gate"
	r.Register(spec)

	types := r.Types()
	require.Len(t, types, 6)
	assert.Equal(t, "Gate", types[1].Label, "re-registering keeps palette position")
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	_, err := Builtin().Resolve("comment")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownNodeType)
}

func TestRegistry_Search(t *testing.T) {
	r := Builtin()

	tests := []struct {
		name  string
		query string
		want  []core.NodeType
	}{
		{"empty returns all", "", []core.NodeType{
			core.NodePrerequisite, core.NodePreCheck, core.NodeAtomicAnalysis,
			core.NodeAnalysisResult, core.NodeAnalysisResource, core.NodeDataModel,
		}},
		{"case insensitive label", "ANALYSIS R", []core.NodeType{core.NodeAnalysisResult, core.NodeAnalysisResource}},
		{"type name", "datamodel", []core.NodeType{core.NodeDataModel}},
		{"no match", "zzz", []core.NodeType{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]core.NodeType, 0)
			for _, spec := range r.Search(tt.query) {
				got = append(got, spec.Type)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeSpec_BlankRow(t *testing.T) {
	spec, err := Builtin().Resolve("atomicAnalysis")
	require.NoError(t, err)

	row := spec.BlankRow("atomicAnalysis-1")
	assert.Equal(t, "atomicAnalysis-1", row.Key())
	assert.Equal(t, "expression", row["analysisType"])
	assert.Equal(t, false, row["ignoreResult"])
	assert.Equal(t, "", row["atomicId"])
	assert.Len(t, row, len(spec.Fields)+1)
}

func TestTypeSpec_InitialData(t *testing.T) {
	spec, err := Builtin().Resolve("dataModel")
	require.NoError(t, err)

	data := spec.InitialData("dataModel-1")
	assert.Equal(t, "dataModel-1", data[core.DataKeyID])
	assert.Equal(t, "dataModel", data[core.DataKeyType])
	assert.Equal(t, "Data Model", data[core.DataKeyTitle])
	assert.Equal(t, true, data[core.DataKeyIsExpanded])
	assert.Equal(t, ParseDumpTable, data["parseType"])
	assert.Equal(t, "left_join", data["joinType"])
}

func TestTypeSpec_RowFromData(t *testing.T) {
	spec, err := Builtin().Resolve("preCheck")
	require.NoError(t, err)

	row := spec.RowFromData("preCheck-9", core.Data{
		"title":          "ignored",
		"checkCondition": "x > 1",
	})
	assert.Equal(t, core.Row{
		"key":            "preCheck-9",
		"analysisItemId": "",
		"checkCondition": "x > 1",
	}, row)
}

func TestTypeSpec_CheckValue(t *testing.T) {
	r := Builtin()
	prereq, _ := r.Lookup(core.NodePrerequisite)
	result, _ := r.Lookup(core.NodeAnalysisResult)

	tests := []struct {
		name    string
		spec    TypeSpec
		field   string
		value   any
		wantErr error
	}{
		{"text ok", prereq, "caseId", "C-1", nil},
		{"text wrong kind", prereq, "caseId", 12.0, core.ErrInvalidValue},
		{"bool ok", prereq, "isEnabled", false, nil},
		{"bool wrong kind", prereq, "isEnabled", "yes", core.ErrInvalidValue},
		{"select ok", result, "severityLevel", "unqualified", nil},
		{"select not an option", result, "severityLevel", "fatal", core.ErrInvalidValue},
		{"unknown column", result, "title", "x", core.ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.CheckValue(tt.field, tt.value)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
