package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapflow/internal/cli/output"
	"github.com/leapstack-labs/leapflow/internal/dag"
	"github.com/leapstack-labs/leapflow/internal/registry"
	"github.com/leapstack-labs/leapflow/pkg/core"
	"github.com/spf13/cobra"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a flowchart document",
		Long: `Summarize a flowchart document: node, edge and row counts per type,
the pipeline's execution levels, and the fields each data model uses
for its parse type.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Summarize an export
  leapflow inspect flowchart-export.json

  # Output as JSON
  leapflow inspect flowchart-export.json --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
	return cmd
}

// InspectOutput is the JSON form of a document summary.
type InspectOutput struct {
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`
	Types      []TypeCount        `json:"types"`
	Levels     [][]string         `json:"levels,omitempty"`
	Cyclic     bool               `json:"cyclic"`
	DataModels []DataModelSummary `json:"dataModels"`
}

// TypeCount is the node and row count of one type.
type TypeCount struct {
	Type  string `json:"type"`
	Nodes int    `json:"nodes"`
	Rows  int    `json:"rows"`
}

// DataModelSummary lists the fields a data model uses for its parse type.
type DataModelSummary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	ParseType string   `json:"parseType"`
	Fields    []string `json:"fields"`
}

func runInspect(cmd *cobra.Command, path string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	ws, err := cmdCtx.LoadWorkspace(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	doc := ws.Export()

	out := InspectOutput{Nodes: len(doc.Nodes), Edges: len(doc.Edges)}

	counts := make(map[core.NodeType]int)
	for _, n := range doc.Nodes {
		counts[n.Kind()]++
	}
	reg := ws.Registry()
	for _, spec := range reg.Types() {
		out.Types = append(out.Types, TypeCount{
			Type:  string(spec.Type),
			Nodes: counts[spec.Type],
			Rows:  len(doc.Tables.Rows(spec.Type)),
		})
	}

	g, err := dag.FromDocument(doc)
	if err != nil {
		return err
	}
	if cyclic, _ := g.HasCycle(); cyclic {
		out.Cyclic = true
	} else if levels, err := g.GetExecutionLevels(); err == nil {
		out.Levels = levels
	}

	spec, _ := reg.Lookup(core.NodeDataModel)
	for _, id := range g.OfType(core.NodeDataModel) {
		n, _ := doc.NodeByID(id)
		typed := registry.DataModelFields{}
		if err := registry.Decode(n.Data, &typed); err != nil {
			cmdCtx.Logger.Warn("undecodable data model", "id", id, "error", err)
		}
		active := spec.ActiveFields(n.Data)
		names := make([]string, len(active))
		for i, f := range active {
			names[i] = f.Name
		}
		out.DataModels = append(out.DataModels, DataModelSummary{
			ID:        id,
			Title:     n.Data.String(core.DataKeyTitle),
			ParseType: typed.ParseType,
			Fields:    names,
		})
	}
	if out.DataModels == nil {
		out.DataModels = []DataModelSummary{}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	default:
		inspectText(r, out)
		return nil
	}
}

func inspectText(r *output.Renderer, out InspectOutput) {
	styles := r.Styles()

	r.Header(1, "Document")
	r.StatusLine("Nodes", fmt.Sprint(out.Nodes))
	r.StatusLine("Edges", fmt.Sprint(out.Edges))
	r.Println("")

	rows := make([][]any, 0, len(out.Types))
	for _, t := range out.Types {
		rows = append(rows, []any{t.Type, t.Nodes, t.Rows})
	}
	r.Table([]string{"Type", "Nodes", "Rows"}, rows)
	r.Println("")

	r.Header(2, "Execution Levels")
	if out.Cyclic {
		r.Warning("pipeline contains a cycle; no execution order exists")
	}
	for i, level := range out.Levels {
		r.Printf("%s %s\n", styles.Bold.Render(fmt.Sprintf("Level %d:", i)), strings.Join(level, ", "))
	}

	if len(out.DataModels) == 0 {
		return
	}
	r.Println("")
	r.Header(2, "Data Models")
	for _, dm := range out.DataModels {
		r.Printf("%s %s (%s)\n", styles.NodeID.Render(dm.ID), dm.Title, dm.ParseType)
		r.Printf("  %s %s\n", styles.Muted.Render("fields:"), strings.Join(dm.Fields, ", "))
	}
}
