package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	editortypes "github.com/leapstack-labs/leapflow/internal/ui/features/editor/types"
	"github.com/leapstack-labs/leapflow/internal/workspace"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestSummaryPanel(t *testing.T) {
	tests := []struct {
		name    string
		summary editortypes.Summary
		want    []string
		notWant []string
	}{
		{
			name:    "empty expanded workspace",
			summary: editortypes.Summary{AllExpanded: true},
			want:    []string{`<section id="editor-summary">`, "<strong>0</strong> nodes"},
			notWant: []string{"collapsed", "Selected:", "Last change:"},
		},
		{
			name: "counts selection and last change",
			summary: editortypes.Summary{
				Nodes:    2,
				Edges:    1,
				Types:    []editortypes.TypeCount{{Label: "Pre-check", Color: "#ff0071", Nodes: 2, Rows: 2}},
				Selected: []string{"preCheck-1", "preCheck-2"},
				Last:     workspace.Event{Op: workspace.OpDrop},
				Changes:  3,
			},
			want: []string{
				"<strong>2</strong> nodes, <strong>1</strong> edges",
				", collapsed",
				`data-style:background="&#39;#ff0071&#39;"`,
				"Pre-check</td><td>2</td><td>2</td>",
				"Selected: preCheck-1, preCheck-2",
				"Last change: drop (3 total)",
			},
		},
		{
			name: "labels are escaped",
			summary: editortypes.Summary{
				AllExpanded: true,
				Types:       []editortypes.TypeCount{{Label: "<b>x</b>"}},
			},
			want:    []string{"&lt;b&gt;x&lt;/b&gt;"},
			notWant: []string{"<b>x</b>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := render(t, SummaryPanel(tt.summary))
			for _, w := range tt.want {
				assert.Contains(t, html, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, html, w)
			}
		})
	}
}

func TestEditorPage_DevReload(t *testing.T) {
	prod := render(t, EditorPage("Flowchart", false, editortypes.Summary{}))
	dev := render(t, EditorPage("Flowchart", true, editortypes.Summary{}))

	assert.Contains(t, prod, "<title>Flowchart - leapflow</title>")
	assert.Contains(t, prod, `href="/static/editor.css"`)
	assert.NotContains(t, prod, "/reload")
	assert.Contains(t, dev, "/reload")
}

func TestSwatchColor(t *testing.T) {
	assert.Equal(t, "'#fff'", swatchColor("#fff"))
	assert.Equal(t, "'red'", swatchColor("r'ed"))
}
