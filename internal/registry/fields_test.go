package registry

import (
	"testing"

	"github.com/leapstack-labs/leapflow/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(fields []FieldSpec) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func TestActiveFields_DataModelParseTypes(t *testing.T) {
	spec, ok := Builtin().Lookup(core.NodeDataModel)
	require.True(t, ok)

	multi := fieldNames(spec.ActiveFields(core.Data{"parseType": ParseMultiTable}))
	assert.Contains(t, multi, "joinType")
	assert.Contains(t, multi, "joinFields")
	assert.NotContains(t, multi, "command")
	assert.NotContains(t, multi, "parameters")

	dump := fieldNames(spec.ActiveFields(core.Data{"parseType": ParseDumpTable}))
	assert.Contains(t, dump, "startMark")
	assert.Contains(t, dump, "lineRegex")
	assert.NotContains(t, dump, "joinType")

	custom := fieldNames(spec.ActiveFields(core.Data{"parseType": ParseChipregTable}))
	assert.Equal(t, []string{"modelId", "parseType", "command", "parameters", "systemParams", "tableHeader", "extraOperation"}, custom)
}

func TestActiveFields_OtherTypesUseAllColumns(t *testing.T) {
	spec, ok := Builtin().Lookup(core.NodePreCheck)
	require.True(t, ok)
	assert.Equal(t, spec.Fields, spec.ActiveFields(nil))
}

func TestTyped(t *testing.T) {
	got, err := Typed(core.NodeAtomicAnalysis, map[string]any{
		"key":          "atomicAnalysis-1",
		"atomicId":     "A-7",
		"analysisType": "raw",
		"ignoreResult": true,
	})
	require.NoError(t, err)

	fields, ok := got.(*AtomicAnalysisFields)
	require.True(t, ok)
	assert.Equal(t, "A-7", fields.AtomicID)
	assert.Equal(t, "raw", fields.AnalysisType)
	assert.True(t, fields.IgnoreResult)

	_, err = Typed("comment", nil)
	assert.ErrorIs(t, err, core.ErrUnknownNodeType)
}
