package workspace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapflow/internal/canvas"
	"github.com/leapstack-labs/leapflow/internal/connect"
	"github.com/leapstack-labs/leapflow/internal/document"
	"github.com/leapstack-labs/leapflow/internal/registry"
	"github.com/leapstack-labs/leapflow/internal/testutil"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return New(Config{
		IDs:    &testutil.SeqIDs{},
		Logger: testutil.NewTestLogger(t),
	})
}

func mustDrop(t *testing.T, w *Workspace, nt core.NodeType, x, y float64) core.Node {
	t.Helper()
	n, err := w.DropNode(string(nt), core.Position{X: x, Y: y})
	require.NoError(t, err)
	return n
}

func link(a, b core.Node) core.Connection {
	return core.Connection{
		Source:       a.ID,
		Target:       b.ID,
		SourceHandle: canvas.HandleID(a.ID, canvas.HandleRight),
		TargetHandle: canvas.HandleID(b.ID, canvas.HandleLeft),
	}
}

// assertPaired checks that every node has exactly one row, in the table of
// its own type, with column values equal to the node's data.
func assertPaired(t *testing.T, w *Workspace) {
	t.Helper()
	report := w.Check()
	assert.True(t, report.OK(), "problems: %+v", report.Problems)

	rows := 0
	for _, nt := range core.TableTypes {
		rows += len(w.Rows(nt))
	}
	assert.Equal(t, len(w.Nodes()), rows, "one row per node")

	for _, n := range w.Nodes() {
		spec, ok := registry.Default().Lookup(n.Kind())
		require.True(t, ok)
		row, ok := w.Row(n.Kind(), n.ID)
		require.True(t, ok, "row for %s", n.ID)
		for _, f := range spec.Fields {
			assert.Equal(t, n.Data[f.Name], row[f.Name], "%s.%s", n.ID, f.Name)
		}
	}
}

func TestDropNode(t *testing.T) {
	w := newTestWorkspace(t)

	n := mustDrop(t, w, core.NodeDataModel, 10, 20)

	assert.Equal(t, "dataModel-1", n.ID)
	assert.Equal(t, core.NodeDataModel, n.Type)
	assert.Equal(t, core.Position{X: 10, Y: 20}, n.Position)
	assert.Equal(t, "dump_table_value", n.Data["parseType"])
	assert.Equal(t, n.ID, n.Data["id"])
	assert.True(t, n.Expanded())

	row, ok := w.Row(core.NodeDataModel, n.ID)
	require.True(t, ok)
	assert.Equal(t, "left_join", row["joinType"])
	assertPaired(t, w)
}

func TestDropNode_UnknownType(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	w := New(Config{IDs: &testutil.SeqIDs{}, Logger: logger})
	mustDrop(t, w, core.NodePreCheck, 0, 0)
	before := w.Snapshot()

	var events []Event
	w.OnChange(func(e Event) { events = append(events, e) })

	_, err := w.DropNode("customWidget", core.Position{})
	require.ErrorIs(t, err, core.ErrUnknownNodeType)
	assert.Equal(t, before, w.Snapshot())
	assert.Empty(t, events)
	assert.Contains(t, logs.String(), "drop rejected")
}

func TestUpdateNodeField(t *testing.T) {
	w := newTestWorkspace(t)
	n := mustDrop(t, w, core.NodeAnalysisResult, 0, 0)
	require.NoError(t, w.SetNodeExpanded(n.ID, false))

	require.NoError(t, w.UpdateNodeField(n.ID, "weightValue", "10"))
	require.NoError(t, w.UpdateNodeField(n.ID, "severityLevel", "unqualified"))
	require.NoError(t, w.UpdateNodeField(n.ID, "title", "Renamed"))

	got, _ := w.Node(n.ID)
	assert.Equal(t, "10", got.Data["weightValue"])
	assert.Equal(t, "Renamed", got.Data["title"])
	assert.False(t, got.Expanded(), "expansion flag preserved")
	assert.Equal(t, n.Position, got.Position)

	row, _ := w.Row(core.NodeAnalysisResult, n.ID)
	assert.Equal(t, "10", row["weightValue"])
	assert.Equal(t, "unqualified", row["severityLevel"])
	assert.NotContains(t, row, "title", "node-only fields stay on the node")
	assertPaired(t, w)
}

func TestUpdateNodeField_Rejections(t *testing.T) {
	w := newTestWorkspace(t)
	n := mustDrop(t, w, core.NodeAnalysisResult, 0, 0)
	before := w.Snapshot()

	tests := []struct {
		name  string
		id    string
		field string
		value any
		want  error
	}{
		{"missing node", "nope", "weightValue", "1", core.ErrNodeNotFound},
		{"bad select", n.ID, "severityLevel", "catastrophic", core.ErrInvalidValue},
		{"read-only id", n.ID, "id", "x", core.ErrInvalidValue},
		{"read-only type", n.ID, "type", "preCheck", core.ErrInvalidValue},
		{"non-bool expansion", n.ID, "isExpanded", "yes", core.ErrInvalidValue},
		{"empty field", n.ID, "", "x", core.ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.UpdateNodeField(tt.id, tt.field, tt.value)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, w.Snapshot())
		})
	}
}

func TestEditCell(t *testing.T) {
	w := newTestWorkspace(t)
	n := mustDrop(t, w, core.NodePrerequisite, 0, 0)
	require.NoError(t, w.UpdateNodeField(n.ID, "title", "Keep me"))

	require.NoError(t, w.EditCell(core.NodePrerequisite, n.ID, "caseId", "CASE-7"))
	require.NoError(t, w.EditCell(core.NodePrerequisite, n.ID, "isEnabled", false))

	got, _ := w.Node(n.ID)
	assert.Equal(t, "CASE-7", got.Data["caseId"])
	assert.Equal(t, false, got.Data["isEnabled"])
	assert.Equal(t, "Keep me", got.Data["title"])
	assertPaired(t, w)
}

func TestEditCell_Rejections(t *testing.T) {
	w := newTestWorkspace(t)
	n := mustDrop(t, w, core.NodePrerequisite, 0, 0)
	before := w.Snapshot()

	tests := []struct {
		name  string
		nt    core.NodeType
		key   string
		field string
		value any
		want  error
	}{
		{"unknown type", "custom", n.ID, "caseId", "x", core.ErrUnknownNodeType},
		{"unknown column", core.NodePrerequisite, n.ID, "title", "x", core.ErrUnknownField},
		{"wrong kind", core.NodePrerequisite, n.ID, "isEnabled", "true", core.ErrInvalidValue},
		{"key column", core.NodePrerequisite, n.ID, "key", "other", core.ErrInvalidValue},
		{"missing row", core.NodePrerequisite, "prerequisite-99", "caseId", "x", core.ErrRowNotFound},
		{"wrong table", core.NodePreCheck, n.ID, "checkCondition", "x", core.ErrRowNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.EditCell(tt.nt, tt.key, tt.field, tt.value)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, w.Snapshot())
		})
	}
}

func TestDeleteNode_Cascade(t *testing.T) {
	w := newTestWorkspace(t)
	pre := mustDrop(t, w, core.NodePrerequisite, 0, 0)
	chk := mustDrop(t, w, core.NodePreCheck, 100, 0)
	atom := mustDrop(t, w, core.NodeAtomicAnalysis, 200, 0)

	_, err := w.Connect(link(pre, chk))
	require.NoError(t, err)
	keep, err := w.Connect(link(chk, atom))
	require.NoError(t, err)
	_, err = w.Connect(link(pre, chk))
	require.Error(t, err, "duplicate")

	require.NoError(t, w.DeleteNode(pre.ID))

	_, ok := w.Node(pre.ID)
	assert.False(t, ok)
	_, ok = w.Row(core.NodePrerequisite, pre.ID)
	assert.False(t, ok)
	assert.Equal(t, []core.Edge{keep}, w.Edges())
	assertPaired(t, w)

	assert.ErrorIs(t, w.DeleteNode(pre.ID), core.ErrNodeNotFound)
}

func TestDeleteNode_PrunesOrphans(t *testing.T) {
	w := newTestWorkspace(t)
	doc := &core.Document{
		Nodes: []core.Node{
			{ID: "a", Type: core.NodePreCheck, Data: core.Data{"type": "preCheck"}},
			{ID: "b", Type: core.NodePreCheck, Data: core.Data{"type": "preCheck"}},
		},
		Edges: []core.Edge{},
	}
	doc.Tables.SetRows(core.NodePreCheck, []core.Row{core.NewRow("a"), core.NewRow("b"), core.NewRow("ghost")})
	doc.Tables.SetRows(core.NodeDataModel, []core.Row{core.NewRow("a")})
	require.NoError(t, w.Import(doc))

	report := w.Check()
	assert.Len(t, report.Problems, 2)

	require.NoError(t, w.DeleteNode("a"))
	assert.Equal(t, []core.Row{core.NewRow("b")}, w.Rows(core.NodePreCheck))
	assert.Empty(t, w.Rows(core.NodeDataModel))
}

func TestOnNodesChange(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustDrop(t, w, core.NodePreCheck, 0, 0)
	b := mustDrop(t, w, core.NodeAtomicAnalysis, 100, 0)
	_, err := w.Connect(link(a, b))
	require.NoError(t, err)

	added := core.Node{
		ID:   "dataModel-x",
		Type: core.NodeDataModel,
		Data: core.Data{"type": "dataModel", "modelId": "M1", "parseType": "ctx_table_value"},
	}
	err = w.OnNodesChange([]canvas.NodeChange{
		{Type: canvas.ChangePosition, ID: b.ID, Position: &core.Position{X: 5, Y: 5}},
		{Type: canvas.ChangeRemove, ID: a.ID},
		{Type: canvas.ChangeAdd, Item: &added},
	})
	require.NoError(t, err)

	nodes := w.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, b.ID, nodes[0].ID)
	assert.Equal(t, core.Position{X: 5, Y: 5}, nodes[0].Position)
	assert.Equal(t, added.ID, nodes[1].ID)
	assert.Empty(t, w.Edges())

	row, ok := w.Row(core.NodeDataModel, added.ID)
	require.True(t, ok)
	assert.Equal(t, "M1", row["modelId"])
	assert.Equal(t, "ctx_table_value", row["parseType"])
	assert.Equal(t, "left_join", row["joinType"], "absent columns take defaults")
	_, ok = w.Row(core.NodePreCheck, a.ID)
	assert.False(t, ok)
}

func rowKeys(rows []core.Row) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key()
	}
	return keys
}

func TestOnNodesChange_Replace(t *testing.T) {
	w := newTestWorkspace(t)
	n := mustDrop(t, w, core.NodePreCheck, 0, 0)
	other := mustDrop(t, w, core.NodePreCheck, 100, 0)

	repl := n.Clone()
	repl.Data["checkCondition"] = "x == 1"
	require.NoError(t, w.OnNodesChange([]canvas.NodeChange{{Type: canvas.ChangeReplace, ID: n.ID, Item: &repl}}))

	row, _ := w.Row(core.NodePreCheck, n.ID)
	assert.Equal(t, "x == 1", row["checkCondition"])
	assert.Equal(t, []string{n.ID, other.ID}, rowKeys(w.Rows(core.NodePreCheck)), "row keeps its place")
	assertPaired(t, w)

	retyped := n.Clone()
	retyped.Data["type"] = "dataModel"
	err := w.OnNodesChange([]canvas.NodeChange{{Type: canvas.ChangeReplace, ID: n.ID, Item: &retyped}})
	assert.ErrorIs(t, err, core.ErrInvalidValue)
}

func TestOnNodesChange_AddThenSelect(t *testing.T) {
	w := newTestWorkspace(t)
	mustDrop(t, w, core.NodePreCheck, 0, 0)

	added := core.Node{ID: "atomicAnalysis-x", Type: core.NodeAtomicAnalysis, Data: core.Data{"type": "atomicAnalysis"}}
	err := w.OnNodesChange([]canvas.NodeChange{
		{Type: canvas.ChangeAdd, Item: &added},
		{Type: canvas.ChangeSelect, ID: added.ID, Selected: true},
		{Type: canvas.ChangePosition, ID: added.ID, Position: &core.Position{X: 40, Y: 60}},
	})
	require.NoError(t, err)

	n, ok := w.Node(added.ID)
	require.True(t, ok)
	assert.True(t, n.Selected)
	assert.Equal(t, core.Position{X: 40, Y: 60}, n.Position)
	assertPaired(t, w)

	gone := core.Node{ID: "dataModel-y", Type: core.NodeDataModel, Data: core.Data{"type": "dataModel"}}
	require.NoError(t, w.OnNodesChange([]canvas.NodeChange{
		{Type: canvas.ChangeAdd, Item: &gone},
		{Type: canvas.ChangeRemove, ID: gone.ID},
	}))
	_, ok = w.Node(gone.ID)
	assert.False(t, ok)
	assertPaired(t, w)
}

func TestOnNodesChange_RejectsWholeBatch(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustDrop(t, w, core.NodePreCheck, 0, 0)
	before := w.Snapshot()

	unknown := core.Node{ID: "z", Type: "custom"}
	dup := core.Node{ID: a.ID, Type: core.NodePreCheck}

	batches := map[string]struct {
		changes []canvas.NodeChange
		want    error
	}{
		"unknown id": {[]canvas.NodeChange{
			{Type: canvas.ChangeRemove, ID: a.ID},
			{Type: canvas.ChangeRemove, ID: "missing"},
		}, core.ErrNodeNotFound},
		"unknown type": {[]canvas.NodeChange{
			{Type: canvas.ChangeRemove, ID: a.ID},
			{Type: canvas.ChangeAdd, Item: &unknown},
		}, core.ErrUnknownNodeType},
		"duplicate add": {[]canvas.NodeChange{{Type: canvas.ChangeAdd, Item: &dup}}, core.ErrDuplicateID},
		"select before add": {[]canvas.NodeChange{
			{Type: canvas.ChangeSelect, ID: "later", Selected: true},
			{Type: canvas.ChangeAdd, Item: &core.Node{ID: "later", Type: core.NodePreCheck}},
		}, core.ErrNodeNotFound},
		"bad change type": {[]canvas.NodeChange{{Type: "teleport", ID: a.ID}}, core.ErrInvalidValue},
	}
	for name, tt := range batches {
		t.Run(name, func(t *testing.T) {
			err := w.OnNodesChange(tt.changes)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, w.Snapshot())
		})
	}
}

func TestOnEdgesChange(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustDrop(t, w, core.NodePreCheck, 0, 0)
	b := mustDrop(t, w, core.NodeAtomicAnalysis, 100, 0)
	c := mustDrop(t, w, core.NodeAnalysisResult, 200, 0)
	e1, err := w.Connect(link(a, b))
	require.NoError(t, err)
	e2, err := w.Connect(link(b, c))
	require.NoError(t, err)

	require.NoError(t, w.OnEdgesChange([]canvas.EdgeChange{{Type: canvas.ChangeRemove, ID: e1.ID}}))
	assert.Equal(t, []core.Edge{e2}, w.Edges())
	assert.Len(t, w.Nodes(), 3, "removing an edge touches nothing else")
	assertPaired(t, w)

	illegal := core.Edge{ID: "x", Source: c.ID, Target: a.ID}
	err = w.OnEdgesChange([]canvas.EdgeChange{{Type: canvas.ChangeAdd, Item: &illegal}})
	require.ErrorIs(t, err, core.ErrInvalidConnection)

	legal := core.Edge{ID: "y", Source: a.ID, Target: c.ID}
	changes := []canvas.EdgeChange{{Type: canvas.ChangeAdd, Item: &legal}}
	require.NoError(t, w.OnEdgesChange(changes))
	edges := w.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, connect.DefaultStyle, edges[1].Style, "style assigned by the gate")
	assert.Equal(t, core.EdgeStyle{}, changes[0].Item.Style, "caller's batch untouched")

	assert.ErrorIs(t, w.OnEdgesChange([]canvas.EdgeChange{{Type: canvas.ChangeRemove, ID: "gone"}}), core.ErrEdgeNotFound)
}

func TestOnEdgesChange_DataFeedStyleWins(t *testing.T) {
	w := newTestWorkspace(t)
	dm := mustDrop(t, w, core.NodeDataModel, 0, 0)
	aa := mustDrop(t, w, core.NodeAtomicAnalysis, 100, 0)

	feed := core.Edge{ID: "feed", Source: dm.ID, Target: aa.ID, Style: core.EdgeStyle{Stroke: "#000", StrokeWidth: 1}}
	require.NoError(t, w.OnEdgesChange([]canvas.EdgeChange{
		{Type: canvas.ChangeAdd, Item: &feed},
		{Type: canvas.ChangeSelect, ID: "feed", Selected: true},
	}))

	want, err := connect.Validate(core.NodeDataModel, core.NodeAtomicAnalysis)
	require.NoError(t, err)
	edges := w.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, want, edges[0].Style)
	assert.True(t, edges[0].Style.Dashed())
	assert.True(t, edges[0].Selected)

	repl := edges[0]
	repl.Style = core.EdgeStyle{Stroke: "#fff"}
	require.NoError(t, w.OnEdgesChange([]canvas.EdgeChange{{Type: canvas.ChangeReplace, ID: "feed", Item: &repl}}))
	assert.Equal(t, want, w.Edges()[0].Style)
}

func TestConnect_Gating(t *testing.T) {
	types := []core.NodeType{
		core.NodePrerequisite, core.NodePreCheck, core.NodeAtomicAnalysis,
		core.NodeDataModel, core.NodeAnalysisResult, core.NodeAnalysisResource,
	}
	for _, src := range types {
		for _, tgt := range types {
			t.Run(string(src)+"->"+string(tgt), func(t *testing.T) {
				w := newTestWorkspace(t)
				a := mustDrop(t, w, src, 0, 0)
				b := mustDrop(t, w, tgt, 100, 0)

				edge, err := w.Connect(link(a, b))
				if connect.Allowed(src, tgt) {
					require.NoError(t, err)
					assert.Equal(t, canvas.EdgeID(link(a, b)), edge.ID)
					assert.Equal(t, []core.Edge{edge}, w.Edges())
					return
				}
				require.ErrorIs(t, err, core.ErrInvalidConnection)
				assert.Empty(t, w.Edges())
			})
		}
	}
}

func TestConnect_DataFeedStyle(t *testing.T) {
	w := newTestWorkspace(t)
	dm := mustDrop(t, w, core.NodeDataModel, 0, 0)
	aa := mustDrop(t, w, core.NodeAtomicAnalysis, 100, 0)

	edge, err := w.Connect(link(dm, aa))
	require.NoError(t, err)
	assert.True(t, edge.Style.Dashed())
	assert.InDelta(t, 3.0, edge.Style.StrokeWidth, 0)
	assert.Equal(t, canvas.DefaultEdgeType, edge.Type)
}

func TestConnect_Rejections(t *testing.T) {
	w := newTestWorkspace(t)
	dm := mustDrop(t, w, core.NodeDataModel, 0, 0)
	aa := mustDrop(t, w, core.NodeAtomicAnalysis, 100, 0)

	_, err := w.Connect(core.Connection{Source: dm.ID, Target: dm.ID})
	var rej *connect.RejectionError
	require.True(t, errors.As(err, &rej), "self loop")

	_, err = w.Connect(core.Connection{Source: dm.ID, Target: "missing"})
	assert.ErrorIs(t, err, core.ErrNodeNotFound)

	bad := link(dm, aa)
	bad.SourceHandle = canvas.HandleID(dm.ID, canvas.HandleTop)
	_, err = w.Connect(bad)
	assert.ErrorIs(t, err, core.ErrInvalidConnection)

	assert.Empty(t, w.Edges())
}

func TestConnectStartEnd(t *testing.T) {
	w := newTestWorkspace(t)
	pre := mustDrop(t, w, core.NodePrerequisite, 0, 0)
	chk := mustDrop(t, w, core.NodePreCheck, 0, 0)
	dm := mustDrop(t, w, core.NodeDataModel, 0, 0)
	before := w.Snapshot()

	require.NoError(t, w.ConnectStart(pre.ID))
	opacity := func(id string) float64 {
		n, _ := w.Node(id)
		return n.Opacity()
	}
	assert.InDelta(t, 1.0, opacity(pre.ID), 0)
	assert.InDelta(t, 1.0, opacity(chk.ID), 0)
	assert.InDelta(t, connect.DefaultDim, opacity(dm.ID), 0)
	src, dragging := w.Dragging()
	assert.True(t, dragging)
	assert.Equal(t, pre.ID, src)

	w.ConnectEnd()
	for _, n := range w.Nodes() {
		assert.InDelta(t, 1.0, n.Opacity(), 0)
	}
	assert.Equal(t, before, w.Snapshot())
	_, dragging = w.Dragging()
	assert.False(t, dragging)

	assert.ErrorIs(t, w.ConnectStart("missing"), core.ErrNodeNotFound)
}

func TestSelectRow(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustDrop(t, w, core.NodePreCheck, 0, 0)
	b := mustDrop(t, w, core.NodePreCheck, 0, 0)
	require.NoError(t, w.SelectNodes(a.ID))

	require.NoError(t, w.SelectRow(core.NodePreCheck, b.ID))
	selected := w.Selected()
	require.Len(t, selected, 1)
	assert.Equal(t, b.ID, selected[0].ID)

	assert.ErrorIs(t, w.SelectRow(core.NodeDataModel, b.ID), core.ErrNodeNotFound)
}

func TestCopyPaste(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustDrop(t, w, core.NodePreCheck, 10, 20)
	b := mustDrop(t, w, core.NodeDataModel, 30, 40)
	mustDrop(t, w, core.NodeAnalysisResource, 0, 0)
	require.NoError(t, w.UpdateNodeField(a.ID, "checkCondition", "ok"))
	require.NoError(t, w.SelectNodes(a.ID, b.ID))

	assert.Equal(t, 2, w.Copy())
	pasted, err := w.Paste()
	require.NoError(t, err)
	require.Len(t, pasted, 2)

	existing := map[string]bool{}
	for _, n := range w.Nodes()[:3] {
		existing[n.ID] = true
	}
	originals := []core.Node{a, b}
	seen := map[string]bool{}
	for i, p := range pasted {
		assert.False(t, existing[p.ID], "fresh id")
		assert.False(t, seen[p.ID], "distinct id")
		seen[p.ID] = true
		assert.Equal(t, p.ID, p.Data["id"])
		assert.False(t, p.Selected)
		assert.Equal(t, originals[i].Position.Add(core.Position{X: 50, Y: 50}), p.Position)
		assert.Equal(t, originals[i].Kind(), p.Kind())
	}

	row, ok := w.Row(core.NodePreCheck, pasted[0].ID)
	require.True(t, ok)
	assert.Equal(t, "ok", row["checkCondition"])
	assertPaired(t, w)

	require.NoError(t, w.UpdateNodeField(pasted[0].ID, "checkCondition", "changed"))
	orig, _ := w.Node(a.ID)
	assert.Equal(t, "ok", orig.Data["checkCondition"])
	origRow, _ := w.Row(core.NodePreCheck, a.ID)
	assert.Equal(t, "ok", origRow["checkCondition"])
}

func TestCopyPaste_NoOps(t *testing.T) {
	w := newTestWorkspace(t)
	mustDrop(t, w, core.NodePreCheck, 0, 0)
	before := w.Snapshot()

	assert.Equal(t, 0, w.Copy())
	pasted, err := w.Paste()
	require.NoError(t, err)
	assert.Empty(t, pasted)
	assert.Equal(t, before, w.Snapshot())
}

func TestPaste_UnknownTypeRejected(t *testing.T) {
	w := newTestWorkspace(t)
	doc := &core.Document{
		Nodes: []core.Node{
			{ID: "ok", Type: core.NodePreCheck, Data: core.Data{"type": "preCheck"}, Selected: true},
			{ID: "odd", Type: "custom", Data: core.Data{"type": "legacyWidget"}, Selected: true},
		},
		Edges: []core.Edge{},
	}
	doc.Tables.SetRows(core.NodePreCheck, []core.Row{core.NewRow("ok")})
	require.NoError(t, w.Import(doc))
	require.NoError(t, w.SelectNodes("ok", "odd"))
	require.Equal(t, 2, w.Copy())
	before := w.Snapshot()

	_, err := w.Paste()
	require.ErrorIs(t, err, core.ErrUnknownNodeType)
	assert.Equal(t, before, w.Snapshot())
}

func TestExportImport_RoundTrip(t *testing.T) {
	w := newTestWorkspace(t)
	pre := mustDrop(t, w, core.NodePrerequisite, 0, 0)
	chk := mustDrop(t, w, core.NodePreCheck, 100, 0)
	dm := mustDrop(t, w, core.NodeDataModel, 0, 100)
	_, err := w.Connect(link(pre, chk))
	require.NoError(t, err)
	require.NoError(t, w.EditCell(core.NodeDataModel, dm.ID, "parseType", "multi_table_value"))
	w.ToggleExpandAll()

	state := w.Export()
	data, err := document.Export(state)
	require.NoError(t, err)

	doc, err := document.Import(data)
	require.NoError(t, err)

	other := newTestWorkspace(t)
	require.NoError(t, other.Import(doc))
	assert.Equal(t, state, other.Export())
	assertPaired(t, other)
}

func TestImport_DuplicateRowKeyRejected(t *testing.T) {
	w := newTestWorkspace(t)
	mustDrop(t, w, core.NodePreCheck, 0, 0)
	before := w.Snapshot()

	doc := &core.Document{
		Nodes: []core.Node{{ID: "preCheck-1", Type: core.NodePreCheck, Data: core.Data{"type": "preCheck"}}},
		Edges: []core.Edge{},
	}
	doc.Tables.SetRows(core.NodePreCheck, []core.Row{
		core.NewRow("preCheck-1"),
		{"key": "preCheck-1", "checkCondition": "stale"},
	})

	err := w.Import(doc)
	require.ErrorIs(t, err, core.ErrInvalidDocument)
	assert.Equal(t, before, w.Snapshot())
}

func TestPasteOffset_Zero(t *testing.T) {
	w := New(Config{IDs: &testutil.SeqIDs{}, PasteOffset: &core.Position{}})
	n := mustDrop(t, w, core.NodePreCheck, 10, 20)
	require.NoError(t, w.SelectNodes(n.ID))
	require.Equal(t, 1, w.Copy())

	pasted, err := w.Paste()
	require.NoError(t, err)
	require.Len(t, pasted, 1)
	assert.Equal(t, n.Position, pasted[0].Position, "zero offset pastes in place")

	def := newTestWorkspace(t)
	assert.Equal(t, DefaultPasteOffset, def.pasteOffset)
}

func TestImport_InvalidLeavesStateUntouched(t *testing.T) {
	w := newTestWorkspace(t)
	mustDrop(t, w, core.NodePreCheck, 0, 0)
	before := w.Snapshot()

	_, err := document.Import([]byte(`{"edges": []}`))
	require.ErrorIs(t, err, core.ErrInvalidDocument)

	err = w.Import(&core.Document{
		Nodes: []core.Node{{ID: "a"}},
		Edges: []core.Edge{{ID: "e", Source: "a", Target: "b"}},
	})
	require.ErrorIs(t, err, core.ErrInvalidDocument)
	require.ErrorIs(t, w.Import(nil), core.ErrInvalidDocument)
	assert.Equal(t, before, w.Snapshot())
}

func TestToggleExpandAll_TwiceRestores(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustDrop(t, w, core.NodePreCheck, 0, 0)
	b := mustDrop(t, w, core.NodeDataModel, 0, 0)
	require.NoError(t, w.SetNodeExpanded(b.ID, false))
	before := w.Snapshot()

	assert.False(t, w.ToggleExpandAll())
	for _, n := range w.Nodes() {
		assert.False(t, n.Expanded(), n.ID)
	}

	assert.True(t, w.ToggleExpandAll())
	assert.Equal(t, before, w.Snapshot())

	got, _ := w.Node(a.ID)
	assert.True(t, got.Expanded())
}

func TestToggleExpandAll_AfterNodeChangeOverwrites(t *testing.T) {
	w := newTestWorkspace(t)
	a := mustDrop(t, w, core.NodePreCheck, 0, 0)
	b := mustDrop(t, w, core.NodePreCheck, 0, 0)

	w.ToggleExpandAll()
	require.NoError(t, w.SetNodeExpanded(a.ID, true))
	w.ToggleExpandAll()

	for _, id := range []string{a.ID, b.ID} {
		n, _ := w.Node(id)
		assert.True(t, n.Expanded(), id)
	}

	w.SetAllExpanded(false)
	assert.False(t, w.AllExpanded())
	for _, n := range w.Nodes() {
		assert.False(t, n.Expanded())
	}
}

func TestOnChange(t *testing.T) {
	w := newTestWorkspace(t)
	var ops []Op
	w.OnChange(func(e Event) { ops = append(ops, e.Op) })

	a := mustDrop(t, w, core.NodePreCheck, 0, 0)
	_ = w.UpdateNodeField(a.ID, "checkCondition", "x")
	_ = w.UpdateNodeField(a.ID, "nope", 1)
	_ = w.EditCell(core.NodePreCheck, a.ID, "missing", "x")
	_ = w.DeleteNode(a.ID)

	assert.Equal(t, []Op{OpDrop, OpFieldChange, OpFieldChange, OpDelete}, ops)
}
