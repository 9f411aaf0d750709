package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapflow/internal/cli/output"
	"github.com/leapstack-labs/leapflow/internal/connect"
	"github.com/leapstack-labs/leapflow/internal/document"
	"github.com/leapstack-labs/leapflow/internal/registry"
	"github.com/leapstack-labs/leapflow/internal/workspace"
	"github.com/leapstack-labs/leapflow/pkg/core"
	"github.com/spf13/cobra"
)

const replPrompt = "leapflow> "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl [file]",
		Short: "Edit a flowchart interactively",
		Long: `Start an interactive shell over an editor workspace.

Every editing operation of the graph editor is available as a dot
command: drop nodes, connect them, edit node fields and table cells,
copy and paste, collapse and expand, and export or import documents.
Type .help inside the shell for the command list.`,
		Example: `  # Start with an empty canvas
  leapflow repl

  # Edit an existing export
  leapflow repl flowchart-export.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, args)
		},
	}
	return cmd
}

func runREPL(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)

	sh := &shell{
		ws:     cmdCtx.NewWorkspace(),
		r:      output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeText),
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		now:    time.Now,
	}
	if len(args) == 1 {
		ws, err := cmdCtx.LoadWorkspace(args[0])
		if err != nil {
			return err
		}
		sh.ws = ws
		sh.path = args[0]
	}

	historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.LibraryPath), "repl_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newShellCompleter(sh.ws.Registry()),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(sh.out, "leapflow editor shell")
	_, _ = fmt.Fprintln(sh.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(sh.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if sh.exec(line) {
			break
		}
	}
	return nil
}

// shell executes dot commands against a workspace.
type shell struct {
	ws     *workspace.Workspace
	r      *output.Renderer
	out    io.Writer
	errOut io.Writer
	path   string
	now    func() time.Time
}

// exec runs one line and reports whether the shell should exit.
func (s *shell) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	if command == ".quit" || command == ".exit" {
		return true
	}
	if err := s.dispatch(command, parts[1:]); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %s\n", connect.UserMessage(err))
	}
	return false
}

func (s *shell) dispatch(command string, args []string) error {
	switch command {
	case ".help":
		printShellHelp(s.out)
		return nil
	case ".add":
		return s.add(args)
	case ".connect":
		if len(args) != 2 {
			return usage(".connect <source-id> <target-id>")
		}
		e, err := s.ws.Connect(core.Connection{Source: args[0], Target: args[1]})
		if err != nil {
			return err
		}
		s.r.Success("connected " + e.ID)
		return nil
	case ".set":
		if len(args) < 3 {
			return usage(".set <node-id> <field> <value>")
		}
		return s.ws.UpdateNodeField(args[0], args[1], parseValue(strings.Join(args[2:], " ")))
	case ".cell":
		if len(args) < 4 {
			return usage(".cell <type> <key> <field> <value>")
		}
		return s.ws.EditCell(core.NodeType(args[0]), args[1], args[2], parseValue(strings.Join(args[3:], " ")))
	case ".rm":
		if len(args) == 0 {
			return usage(".rm <node-id>...")
		}
		for _, id := range args {
			if err := s.ws.DeleteNode(id); err != nil {
				return err
			}
		}
		return nil
	case ".select":
		return s.ws.SelectNodes(args...)
	case ".copy":
		n := s.ws.Copy()
		_, _ = fmt.Fprintf(s.out, "%d node(s) on the clipboard\n", n)
		return nil
	case ".paste":
		pasted, err := s.ws.Paste()
		if err != nil {
			return err
		}
		for _, n := range pasted {
			_, _ = fmt.Fprintln(s.out, n.ID)
		}
		return nil
	case ".expand":
		return s.expand(args)
	case ".nodes":
		s.printNodes()
		return nil
	case ".edges":
		s.printEdges()
		return nil
	case ".rows":
		if len(args) != 1 {
			return usage(".rows <type>")
		}
		return s.printRows(core.NodeType(args[0]))
	case ".check":
		s.printCheck()
		return nil
	case ".export":
		return s.export(args)
	case ".import":
		if len(args) != 1 {
			return usage(".import <file>")
		}
		doc, err := document.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := s.ws.Import(doc); err != nil {
			return err
		}
		s.path = args[0]
		s.r.Success(fmt.Sprintf("imported %d nodes", len(doc.Nodes)))
		return nil
	default:
		return fmt.Errorf("unknown command: %s (type .help for commands)", command)
	}
}

func usage(u string) error {
	return fmt.Errorf("usage: %s", u)
}

func (s *shell) add(args []string) error {
	if len(args) != 1 && len(args) != 3 {
		return usage(".add <type> [x y]")
	}
	var pos core.Position
	if len(args) == 3 {
		x, errX := strconv.ParseFloat(args[1], 64)
		y, errY := strconv.ParseFloat(args[2], 64)
		if errX != nil || errY != nil {
			return usage(".add <type> [x y]")
		}
		pos = core.Position{X: x, Y: y}
	}
	n, err := s.ws.DropNode(args[0], pos)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(s.out, n.ID)
	return nil
}

func (s *shell) expand(args []string) error {
	switch {
	case len(args) == 0:
		state := "collapsed"
		if s.ws.ToggleExpandAll() {
			state = "expanded"
		}
		_, _ = fmt.Fprintln(s.out, state)
	case args[0] == "on":
		s.ws.SetAllExpanded(true)
	case args[0] == "off":
		s.ws.SetAllExpanded(false)
	default:
		return usage(".expand [on|off]")
	}
	return nil
}

func (s *shell) export(args []string) error {
	path := s.path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		path = document.FileName(s.now())
	}
	if err := document.WriteFile(path, s.ws.Export()); err != nil {
		return err
	}
	s.path = path
	s.r.Success("wrote " + path)
	return nil
}

func (s *shell) printNodes() {
	nodes := s.ws.Nodes()
	if len(nodes) == 0 {
		s.r.Muted("(no nodes)")
		return
	}
	rows := make([][]any, 0, len(nodes))
	for _, n := range nodes {
		mark := ""
		if n.Selected {
			mark = "*"
		}
		rows = append(rows, []any{mark, n.ID, string(n.Kind()), n.Data.String(core.DataKeyTitle),
			fmt.Sprintf("%g,%g", n.Position.X, n.Position.Y), n.Expanded()})
	}
	s.r.Table([]string{"", "ID", "Type", "Title", "Position", "Expanded"}, rows)
}

func (s *shell) printEdges() {
	edges := s.ws.Edges()
	if len(edges) == 0 {
		s.r.Muted("(no edges)")
		return
	}
	rows := make([][]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []any{e.Source, e.Target, s.r.Styles().Swatch(e.Style.Stroke, e.Style.Stroke)})
	}
	s.r.Table([]string{"Source", "Target", "Stroke"}, rows)
}

func (s *shell) printRows(nt core.NodeType) error {
	spec, ok := s.ws.Registry().Lookup(nt)
	if !ok {
		return fmt.Errorf("%w: %q", core.ErrUnknownNodeType, nt)
	}
	rows := s.ws.Rows(nt)
	if len(rows) == 0 {
		s.r.Muted("(no rows)")
		return nil
	}
	header := []string{core.RowKey}
	for _, f := range spec.Fields {
		header = append(header, f.Name)
	}
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		line := make([]any, 0, len(header))
		for _, col := range header {
			line = append(line, row[col])
		}
		out = append(out, line)
	}
	s.r.Table(header, out)
	return nil
}

func (s *shell) printCheck() {
	report := s.ws.Check()
	if report.OK() {
		s.r.Success("consistent")
		return
	}
	for _, p := range report.Problems {
		_, _ = fmt.Fprintf(s.out, "%s %s: %s\n", p.Kind, p.ID, p.Message)
	}
}

// parseValue reads booleans literally and everything else as text.
func parseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .add <type> [x y]                  Drop a node of a type
  .connect <source-id> <target-id>   Connect two nodes
  .set <node-id> <field> <value>     Edit a node field
  .cell <type> <key> <field> <value> Edit a table cell
  .rm <node-id>...                   Delete nodes and their edges
  .select [node-id...]               Select nodes (none clears)
  .copy / .paste                     Copy the selection, paste it offset
  .expand [on|off]                   Toggle or set expand-all
  .nodes / .edges                    List the graph
  .rows <type>                       Show a type's table
  .check                             Verify node/row consistency
  .export [file]                     Write the document
  .import <file>                     Replace the state from a file
  .quit / .exit                      Exit the shell
`
	_, _ = fmt.Fprintln(w, help)
}

// newShellCompleter creates a readline completer for dot commands and type names.
func newShellCompleter(reg *registry.Registry) *readline.PrefixCompleter {
	var types []readline.PrefixCompleterInterface
	for _, s := range reg.Types() {
		types = append(types, readline.PcItem(string(s.Type)))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".add", types...),
		readline.PcItem(".connect"),
		readline.PcItem(".set"),
		readline.PcItem(".cell", types...),
		readline.PcItem(".rm"),
		readline.PcItem(".select"),
		readline.PcItem(".copy"),
		readline.PcItem(".paste"),
		readline.PcItem(".expand", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem(".nodes"),
		readline.PcItem(".edges"),
		readline.PcItem(".rows", types...),
		readline.PcItem(".check"),
		readline.PcItem(".export"),
		readline.PcItem(".import"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
