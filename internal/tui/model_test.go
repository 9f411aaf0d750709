package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapflow/internal/testutil"
	"github.com/leapstack-labs/leapflow/internal/workspace"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

func newWorkspace(t *testing.T, types ...string) *workspace.Workspace {
	t.Helper()
	ws := workspace.New(workspace.Config{IDs: &testutil.SeqIDs{}, Logger: testutil.NewTestLogger(t)})
	for _, nt := range types {
		_, err := ws.DropNode(nt, core.Position{})
		require.NoError(t, err)
	}
	return ws
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyRight    = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft     = tea.KeyMsg{Type: tea.KeyLeft}
	keySpace    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keySave     = tea.KeyMsg{Type: tea.KeyCtrlS}
)

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewStartsOnFirstType(t *testing.T) {
	m := New(newWorkspace(t), nil)

	assert.Equal(t, core.NodePrerequisite, m.ActiveType())
	assert.Equal(t, "caseId", m.Column())
	assert.False(t, m.Dirty())
	assert.Contains(t, m.View(), "Prerequisite (0)")
}

func TestTabSwitchesType(t *testing.T) {
	m := New(newWorkspace(t), nil)

	m = press(t, m, keyTab)
	assert.Equal(t, core.NodePreCheck, m.ActiveType())

	m = press(t, m, keyShiftTab, keyShiftTab)
	assert.Equal(t, core.NodeDataModel, m.ActiveType(), "shift+tab wraps around")
}

func TestColumnNavigationIsBounded(t *testing.T) {
	m := New(newWorkspace(t), nil)

	m = press(t, m, keyLeft)
	assert.Equal(t, "caseId", m.Column())

	for range 10 {
		m = press(t, m, keyRight)
	}
	assert.Equal(t, "boardPrerequisite", m.Column())
}

func TestEditTextCellUpdatesRowAndNode(t *testing.T) {
	ws := newWorkspace(t, "prerequisite")
	m := New(ws, nil)

	m = press(t, m, keyEnter)
	require.True(t, m.Editing())
	m = press(t, m, typed("C-42"), keyEnter)

	assert.False(t, m.Editing())
	assert.True(t, m.Dirty())

	row, ok := ws.Row(core.NodePrerequisite, "prerequisite-1")
	require.True(t, ok)
	assert.Equal(t, "C-42", row["caseId"])
	n, _ := ws.Node("prerequisite-1")
	assert.Equal(t, "C-42", n.Data["caseId"])
}

func TestEscCancelsEdit(t *testing.T) {
	ws := newWorkspace(t, "prerequisite")
	m := New(ws, nil)

	m = press(t, m, keyEnter, typed("nope"), keyEsc)

	assert.False(t, m.Editing())
	assert.False(t, m.Dirty())
	row, _ := ws.Row(core.NodePrerequisite, "prerequisite-1")
	assert.Equal(t, "", row["caseId"])
}

func TestEnterTogglesBool(t *testing.T) {
	ws := newWorkspace(t, "prerequisite")
	m := New(ws, nil)

	m = press(t, m, keyRight, keyEnter)

	assert.False(t, m.Editing())
	row, _ := ws.Row(core.NodePrerequisite, "prerequisite-1")
	assert.Equal(t, false, row["isEnabled"])
	n, _ := ws.Node("prerequisite-1")
	assert.Equal(t, false, n.Data["isEnabled"])
}

func TestEnterCyclesSelect(t *testing.T) {
	ws := newWorkspace(t, "atomicAnalysis")
	m := New(ws, nil)

	m = press(t, m, keyTab, keyTab, keyRight)
	require.Equal(t, "analysisType", m.Column())

	m = press(t, m, keyEnter)
	row, _ := ws.Row(core.NodeAtomicAnalysis, "atomicAnalysis-1")
	assert.Equal(t, "raw", row["analysisType"])

	m = press(t, m, keyEnter, keyEnter)
	row, _ = ws.Row(core.NodeAtomicAnalysis, "atomicAnalysis-1")
	assert.Equal(t, "expression", row["analysisType"], "cycling wraps to the first option")
	assert.True(t, m.Dirty())
}

func TestSpaceSelectsNode(t *testing.T) {
	ws := newWorkspace(t, "preCheck", "prerequisite")
	m := New(ws, nil)

	m = press(t, m, keySpace)

	sel := ws.Selected()
	require.Len(t, sel, 1)
	assert.Equal(t, "prerequisite-2", sel[0].ID)
	assert.Contains(t, m.Status(), "prerequisite-2")
}

func TestSave(t *testing.T) {
	ws := newWorkspace(t, "prerequisite")
	var saved *core.Document
	m := New(ws, func(doc *core.Document) error {
		saved = doc
		return nil
	})

	m = press(t, m, keyRight, keyEnter, keySave)

	require.NotNil(t, saved)
	assert.Len(t, saved.Nodes, 1)
	assert.Equal(t, false, saved.Tables.PrerequisiteData[0]["isEnabled"])
	assert.False(t, m.Dirty())
	assert.Equal(t, "saved", m.Status())
}

func TestSaveFailureKeepsDirty(t *testing.T) {
	ws := newWorkspace(t, "prerequisite")
	m := New(ws, func(*core.Document) error { return errors.New("disk full") })

	m = press(t, m, keyRight, keyEnter, keySave)

	assert.True(t, m.Dirty())
	assert.Contains(t, m.Status(), "disk full")
}

func TestSaveWithoutTarget(t *testing.T) {
	m := New(newWorkspace(t), nil)
	m = press(t, m, keySave)
	assert.Equal(t, "no file to save to", m.Status())
}

func TestQuit(t *testing.T) {
	m := New(newWorkspace(t), nil)

	_, cmd := m.Update(typed("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewListsRows(t *testing.T) {
	ws := newWorkspace(t, "preCheck")
	m := New(ws, nil)
	m = press(t, m, keyTab)

	view := m.View()
	assert.Contains(t, view, "Pre-check (1)")
	assert.Contains(t, view, "preCheck-1")
	assert.True(t, strings.Contains(view, "[analysisItemId]"))
}
