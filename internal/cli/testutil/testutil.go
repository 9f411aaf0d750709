// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapflow/internal/cli/output"
	"github.com/leapstack-labs/leapflow/internal/document"
	basetestutil "github.com/leapstack-labs/leapflow/internal/testutil"
	"github.com/leapstack-labs/leapflow/internal/workspace"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

// UnpairedDocument parses but has no tables, so every node lacks its row.
const UnpairedDocument = `{
  "nodes": [
    {"id": "prerequisite-1", "type": "prerequisite", "position": {"x": 0, "y": 0}, "data": {"type": "prerequisite"}},
    {"id": "preCheck-2", "type": "preCheck", "position": {"x": 200, "y": 0}, "data": {"type": "preCheck"}}
  ],
  "edges": []
}
`

// SampleDocument returns a consistent exported pipeline: a prerequisite
// feeding a pre-check, and a data model feeding an atomic analysis. Ids
// are prerequisite-1, preCheck-2, dataModel-3 and atomicAnalysis-4.
func SampleDocument(t *testing.T) string {
	t.Helper()

	ws := workspace.New(workspace.Config{IDs: &basetestutil.SeqIDs{}})
	var nodes []core.Node
	for i, nt := range []core.NodeType{core.NodePrerequisite, core.NodePreCheck, core.NodeDataModel, core.NodeAtomicAnalysis} {
		n, err := ws.DropNode(string(nt), core.Position{X: float64(i%2) * 200, Y: float64(i/2) * 200})
		require.NoError(t, err)
		nodes = append(nodes, n)
	}
	require.NoError(t, ws.UpdateNodeField(nodes[0].ID, "caseId", "C-1"))
	for _, pair := range [][2]int{{0, 1}, {2, 3}} {
		_, err := ws.Connect(core.Connection{Source: nodes[pair[0]].ID, Target: nodes[pair[1]].ID})
		require.NoError(t, err)
	}

	data, err := document.Export(ws.Export())
	require.NoError(t, err)
	return string(data)
}

// Project is a temporary project directory with a config file and a
// document.
type Project struct {
	Dir        string
	ConfigPath string
	DocPath    string
	Library    string
}

// SetupTestProject creates a temporary project whose leapflow.yaml selects
// the given output mode and a library inside the project. The document is
// written to flow.json.
func SetupTestProject(t *testing.T, outputMode, doc string) *Project {
	t.Helper()

	dir := t.TempDir()
	p := &Project{
		Dir:        dir,
		ConfigPath: filepath.Join(dir, "leapflow.yaml"),
		DocPath:    filepath.Join(dir, "flow.json"),
		Library:    filepath.Join(dir, ".leapflow", "library.db"),
	}

	cfg := "library_path: .leapflow/library.db\nlog_level: error\noutput: " + outputMode + "\n"
	require.NoError(t, os.WriteFile(p.ConfigPath, []byte(cfg), 0o600))
	if doc != "" {
		require.NoError(t, os.WriteFile(p.DocPath, []byte(doc), 0o600))
	}
	return p
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, mode, isTTY),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
