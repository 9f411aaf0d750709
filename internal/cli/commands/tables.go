package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/leapstack-labs/leapflow/internal/document"
	"github.com/leapstack-labs/leapflow/internal/tui"
	"github.com/leapstack-labs/leapflow/pkg/core"
	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables <file>",
		Short: "Edit a document's tables in the terminal",
		Long: `Open the per-type tables of a document in a terminal spreadsheet.

Every cell edit is applied to the paired node as well. Booleans toggle and
select columns cycle through their options on enter; text cells open an
input. ctrl+s writes the document back to the file.`,
		Example: `  leapflow tables flowchart-export.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd, args[0])
		},
	}
	return cmd
}

func runTables(cmd *cobra.Command, path string) error {
	cmdCtx := NewCommandContext(cmd)
	ws, err := cmdCtx.LoadWorkspace(path)
	if err != nil {
		return err
	}

	save := func(doc *core.Document) error {
		return document.WriteFile(path, doc)
	}

	p := tea.NewProgram(tui.New(ws, save),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("table editor: %w", err)
	}
	if m, ok := final.(tui.Model); ok && m.Dirty() {
		cmdCtx.Renderer.Warning("unsaved changes discarded")
	}
	return nil
}
