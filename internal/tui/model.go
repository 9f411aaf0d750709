// Package tui is a terminal spreadsheet over the per-type tables of a
// workspace. Each node type gets a tab; cells are edited in place and every
// edit goes through the workspace, so nodes follow their rows.
package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/leapflow/internal/connect"
	"github.com/leapstack-labs/leapflow/internal/registry"
	"github.com/leapstack-labs/leapflow/internal/workspace"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

const (
	minColWidth = 8
	maxColWidth = 28
	tableHeight = 15
)

var (
	tabStyle       = lipgloss.NewStyle().Padding(0, 1)
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("12")).Underline(true)
	cellStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// SaveFunc persists the workspace's exported document.
type SaveFunc func(doc *core.Document) error

// Model is the bubbletea model of the table editor.
type Model struct {
	ws    *workspace.Workspace
	specs []registry.TypeSpec
	tab   int
	col   int

	table   table.Model
	input   textinput.Model
	editing bool

	save   SaveFunc
	dirty  bool
	status string
	failed bool
}

// New creates a table editor over ws. save may be nil, which disables ctrl+s.
func New(ws *workspace.Workspace, save SaveFunc) Model {
	var specs []registry.TypeSpec
	for _, s := range ws.Registry().Types() {
		if s.TableBacked {
			specs = append(specs, s)
		}
	}

	in := textinput.New()
	in.Prompt = "= "
	in.CharLimit = 4096

	m := Model{
		ws:    ws,
		specs: specs,
		table: table.New(table.WithFocused(true), table.WithHeight(tableHeight)),
		input: in,
		save:  save,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.editing {
		return m.updateEditing(key)
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		m.switchTab(1)
		return m, nil
	case "shift+tab":
		m.switchTab(-1)
		return m, nil
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
		return m, nil
	case "right", "l":
		if spec, ok := m.spec(); ok && m.col < len(spec.Fields)-1 {
			m.col++
		}
		return m, nil
	case "enter":
		m.beginEdit()
		return m, nil
	case " ", "space":
		m.selectNode()
		return m, nil
	case "ctrl+s":
		m.persist()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateEditing(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		m.setStatus("edit cancelled", false)
		return m, nil
	case "enter":
		m.commit(m.input.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	tabs := make([]string, len(m.specs))
	for i, s := range m.specs {
		label := fmt.Sprintf("%s (%d)", s.Label, len(m.ws.Rows(s.Type)))
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	if f, ok := m.field(); ok {
		b.WriteString(cellStyle.Render(fmt.Sprintf("[%s]", f.Name)))
		if len(f.Options) > 0 {
			b.WriteString(statusStyle.Render(" one of " + optionList(f)))
		}
		b.WriteString("\n")
	}
	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	status := m.status
	if m.dirty {
		status = strings.TrimSpace("modified " + status)
	}
	if m.failed {
		b.WriteString(errorStyle.Render(status))
	} else {
		b.WriteString(statusStyle.Render(status))
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("tab: type  ←/→: column  enter: edit  space: select node  ctrl+s: save  q: quit"))
	return b.String()
}

// Dirty reports whether there are unsaved edits.
func (m Model) Dirty() bool { return m.dirty }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// ActiveType returns the type of the visible table.
func (m Model) ActiveType() core.NodeType {
	if s, ok := m.spec(); ok {
		return s.Type
	}
	return ""
}

// Column returns the name of the selected column.
func (m Model) Column() string {
	if f, ok := m.field(); ok {
		return f.Name
	}
	return ""
}

// Editing reports whether a cell edit is in progress.
func (m Model) Editing() bool { return m.editing }

func (m *Model) spec() (registry.TypeSpec, bool) {
	if m.tab < 0 || m.tab >= len(m.specs) {
		return registry.TypeSpec{}, false
	}
	return m.specs[m.tab], true
}

func (m *Model) field() (registry.FieldSpec, bool) {
	s, ok := m.spec()
	if !ok || m.col >= len(s.Fields) {
		return registry.FieldSpec{}, false
	}
	return s.Fields[m.col], true
}

func (m *Model) selectedKey() (string, bool) {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return "", false
	}
	return row[0], true
}

func (m *Model) switchTab(step int) {
	if len(m.specs) == 0 {
		return
	}
	m.tab = (m.tab + step + len(m.specs)) % len(m.specs)
	m.col = 0
	m.table.SetCursor(0)
	m.refresh()
}

// beginEdit opens the input for text cells, flips booleans and cycles
// select fields in place.
func (m *Model) beginEdit() {
	key, ok := m.selectedKey()
	f, okF := m.field()
	if !ok || !okF {
		return
	}
	s, _ := m.spec()
	row, _ := m.ws.Row(s.Type, key)

	switch f.Kind {
	case registry.KindBool:
		cur, _ := row[f.Name].(bool)
		m.commitValue(key, f, !cur)
	case registry.KindSelect:
		cur, _ := row[f.Name].(string)
		m.commitValue(key, f, nextOption(f, cur))
	default:
		m.editing = true
		m.input.SetValue(fmt.Sprint(valueOr(row[f.Name], "")))
		m.input.CursorEnd()
		m.input.Focus()
	}
}

func (m *Model) commit(raw string) {
	key, ok := m.selectedKey()
	f, okF := m.field()
	if !ok || !okF {
		m.editing = false
		return
	}
	var value any = raw
	if f.Kind == registry.KindBool {
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			m.setStatus(fmt.Sprintf("%s expects true or false", f.Name), true)
			return
		}
		value = b
	}
	if m.commitValue(key, f, value) {
		m.editing = false
		m.input.Blur()
	}
}

func (m *Model) commitValue(key string, f registry.FieldSpec, value any) bool {
	s, _ := m.spec()
	if err := m.ws.EditCell(s.Type, key, f.Name, value); err != nil {
		m.setStatus(err.Error(), true)
		return false
	}
	m.dirty = true
	m.setStatus(fmt.Sprintf("%s.%s updated", key, f.Name), false)
	m.refresh()
	return true
}

func (m *Model) selectNode() {
	key, ok := m.selectedKey()
	if !ok {
		return
	}
	s, _ := m.spec()
	if err := m.ws.SelectRow(s.Type, key); err != nil {
		m.setStatus(connect.UserMessage(err), true)
		return
	}
	m.setStatus("selected "+key, false)
}

func (m *Model) persist() {
	if m.save == nil {
		m.setStatus("no file to save to", true)
		return
	}
	if err := m.save(m.ws.Export()); err != nil {
		m.setStatus("save failed: "+err.Error(), true)
		return
	}
	m.dirty = false
	m.setStatus("saved", false)
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

// refresh rebuilds columns and rows of the visible table from the workspace.
func (m *Model) refresh() {
	s, ok := m.spec()
	if !ok {
		return
	}
	rows := m.ws.Rows(s.Type)

	cols := []table.Column{{Title: core.RowKey, Width: maxColWidth}}
	for _, f := range s.Fields {
		cols = append(cols, table.Column{Title: f.Label, Width: colWidth(f, rows)})
	}

	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		line := table.Row{r.Key()}
		for _, f := range s.Fields {
			line = append(line, fmt.Sprint(valueOr(r[f.Name], "")))
		}
		out = append(out, line)
	}

	cursor := m.table.Cursor()
	// Columns and rows must agree in width at every step.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(out)
	if cursor >= len(out) {
		cursor = len(out) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.table.SetCursor(cursor)
}

func colWidth(f registry.FieldSpec, rows []core.Row) int {
	w := len(f.Label)
	for _, r := range rows {
		if n := len(fmt.Sprint(valueOr(r[f.Name], ""))); n > w {
			w = n
		}
	}
	return min(max(w, minColWidth), maxColWidth)
}

func valueOr(v, def any) any {
	if v == nil {
		return def
	}
	return v
}

func nextOption(f registry.FieldSpec, cur string) string {
	if len(f.Options) == 0 {
		return cur
	}
	i := slices.IndexFunc(f.Options, func(o registry.Option) bool { return o.Value == cur })
	return f.Options[(i+1)%len(f.Options)].Value
}

func optionList(f registry.FieldSpec) string {
	vals := make([]string, len(f.Options))
	for i, o := range f.Options {
		vals[i] = o.Value
	}
	return strings.Join(vals, ", ")
}
