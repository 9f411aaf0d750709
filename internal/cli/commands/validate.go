package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapflow/internal/cli/output"
	"github.com/leapstack-labs/leapflow/internal/dag"
	"github.com/leapstack-labs/leapflow/internal/workspace"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a flowchart document for consistency",
		Long: `Import a flowchart document and check it.

The document must parse and be referentially sound. The loaded state is
then checked for node/row pairing, field drift between nodes and rows,
unknown node types, and edges the connection rules would refuse.
Cycles in the pipeline are reported as warnings.

Exits non-zero when any problem is found.`,
		Example: `  # Validate an export
  leapflow validate flowchart-export.json

  # Machine-readable report
  leapflow validate pipeline.yaml -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}
	return cmd
}

// ValidateOutput is the JSON form of a validation report.
type ValidateOutput struct {
	File     string              `json:"file"`
	Valid    bool                `json:"valid"`
	Problems []workspace.Problem `json:"problems"`
	Cycle    []string            `json:"cycle,omitempty"`
}

func runValidate(cmd *cobra.Command, path string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	ws, err := cmdCtx.LoadWorkspace(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	report := ws.Check()
	out := ValidateOutput{File: path, Valid: report.OK(), Problems: report.Problems}
	if out.Problems == nil {
		out.Problems = []workspace.Problem{}
	}

	if g, err := dag.FromDocument(ws.Export()); err == nil {
		if cyclic, cycle := g.HasCycle(); cyclic {
			out.Cycle = cycle
		}
	}

	cmdCtx.Logger.Debug("validated document",
		"file", path, "problems", len(out.Problems), "cyclic", len(out.Cycle) > 0)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if err := r.JSON(out); err != nil {
			return err
		}
	default:
		validateText(r, out)
	}

	if !out.Valid {
		return fmt.Errorf("%s: %d problem(s) found", path, len(out.Problems))
	}
	return nil
}

func validateText(r *output.Renderer, out ValidateOutput) {
	styles := r.Styles()
	for _, p := range out.Problems {
		r.Printf("%s %s %s\n", styles.Error.Render(string(p.Kind)), styles.NodeID.Render(p.ID), p.Message)
	}
	if len(out.Cycle) > 0 {
		r.Warning("pipeline contains a cycle: " + strings.Join(out.Cycle, " → "))
	}
	if out.Valid {
		r.Success(fmt.Sprintf("%s is valid", out.File))
	}
}
