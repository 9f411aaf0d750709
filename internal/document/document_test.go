package document

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

func sampleDoc() *core.Document {
	doc := &core.Document{
		Nodes: []core.Node{
			{
				ID:       "preCheck-1",
				Type:     core.NodePreCheck,
				Position: core.Position{X: 100, Y: 40},
				Data:     core.Data{"id": "preCheck-1", "title": "Pre-check", "type": "preCheck", "isExpanded": true, "checkCondition": "a > b"},
			},
			{
				ID:       "atomicAnalysis-2",
				Type:     core.NodeAtomicAnalysis,
				Position: core.Position{X: 300, Y: 40},
				Data:     core.Data{"id": "atomicAnalysis-2", "title": "Atomic", "type": "atomicAnalysis", "isExpanded": false, "ignoreResult": true},
			},
		},
		Edges: []core.Edge{{
			ID:           "reactflow__edge-preCheck-1preCheck-1-right-atomicAnalysis-2atomicAnalysis-2-left",
			Source:       "preCheck-1",
			Target:       "atomicAnalysis-2",
			SourceHandle: "preCheck-1-right",
			TargetHandle: "atomicAnalysis-2-left",
			Type:         "smoothstep",
			Style:        core.EdgeStyle{Stroke: "#52C41A", StrokeWidth: 2},
		}},
	}
	doc.Tables.SetRows(core.NodePreCheck, []core.Row{{"key": "preCheck-1", "analysisItemId": "", "checkCondition": "a > b"}})
	doc.Tables.SetRows(core.NodeAtomicAnalysis, []core.Row{{"key": "atomicAnalysis-2", "ignoreResult": true}})
	doc.Tables.Normalize()
	return doc
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			in := sampleDoc()
			data, err := Encode(in, f)
			require.NoError(t, err)

			out, err := Decode(data, f)
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestExport_StripsTransientState(t *testing.T) {
	in := sampleDoc()
	in.Nodes[0].Selected = true
	in.Nodes[1].Style.Opacity = 0.2

	data, err := Export(in)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "selected")
	assert.NotContains(t, string(data), "opacity")
	assert.True(t, in.Nodes[0].Selected, "input untouched")

	for _, key := range []string{"prerequisiteData", "preCheckData", "atomicAnalysisData", "analysisResultData", "analysisResourceData", "dataModelData"} {
		assert.Contains(t, string(data), `"`+key+`"`)
	}
}

func TestImport_Validation(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"missing nodes", `{"edges": []}`},
		{"missing edges", `{"nodes": []}`},
		{"null nodes", `{"nodes": null, "edges": []}`},
		{"not json", `{nodes`},
		{"not an object", `[1, 2]`},
		{"duplicate node", `{"nodes": [{"id": "a"}, {"id": "a"}], "edges": []}`},
		{"node without id", `{"nodes": [{"type": "preCheck"}], "edges": []}`},
		{"dangling edge", `{"nodes": [{"id": "a"}], "edges": [{"id": "e", "source": "a", "target": "b"}]}`},
		{"duplicate edge", `{"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"id": "e", "source": "a", "target": "b"}, {"id": "e", "source": "a", "target": "b"}]}`},
		{"duplicate row key", `{"nodes": [{"id": "preCheck-1", "type": "preCheck"}], "edges": [], "tables": {"preCheckData": [{"key": "preCheck-1"}, {"key": "preCheck-1", "checkCondition": "x"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.json))
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidDocument)
		})
	}
}

func TestValidate_SameKeyInDifferentTables(t *testing.T) {
	doc := &core.Document{Nodes: []core.Node{}, Edges: []core.Edge{}}
	doc.Tables.SetRows(core.NodePreCheck, []core.Row{core.NewRow("k")})
	doc.Tables.SetRows(core.NodeDataModel, []core.Row{core.NewRow("k")})

	assert.NoError(t, Validate(doc), "keys are unique per table")

	doc.Tables.SetRows(core.NodeDataModel, []core.Row{core.NewRow("k"), core.NewRow("k")})
	err := Validate(doc)
	require.ErrorIs(t, err, core.ErrInvalidDocument)
	assert.Contains(t, err.Error(), "dataModelData")
}

func TestImport_MissingTables(t *testing.T) {
	doc, err := Import([]byte(`{"nodes": [], "edges": [], "tables": {"preCheckData": [{"key": "x"}]}}`))
	require.NoError(t, err)
	assert.Len(t, doc.Tables.PreCheckData, 1)
	assert.NotNil(t, doc.Tables.DataModelData)
	assert.Empty(t, doc.Tables.DataModelData)

	doc, err = Import([]byte(`{"nodes": [], "edges": []}`))
	require.NoError(t, err)
	for _, nt := range core.TableTypes {
		assert.Empty(t, doc.Tables.Rows(nt))
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"doc.json", "doc.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(path, sampleDoc()))

			got, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, sampleDoc(), got)
		})
	}

	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("toml")
	assert.Error(t, err)
	assert.Equal(t, FormatJSON, FormatOf("x.txt"))
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 123_000_000, time.UTC)
	assert.Equal(t, "flowchart-export-2024-03-05T14-07-09-123Z.json", FileName(now))
}
