package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leapflow/internal/cli/output"
	"github.com/leapstack-labs/leapflow/internal/document"
	"github.com/spf13/cobra"
)

// NewLibraryCommand creates the library command and its subcommands.
func NewLibraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage the local document library",
		Long: `Store, list, restore and delete named flowchart documents.

The library is a SQLite database at library_path (default
.leapflow/library.db under the project root).`,
	}

	cmd.AddCommand(newLibraryListCommand())
	cmd.AddCommand(newLibrarySaveCommand())
	cmd.AddCommand(newLibraryOpenCommand())
	cmd.AddCommand(newLibraryRemoveCommand())
	return cmd
}

func newLibraryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, cleanup, err := cmdCtx.OpenLibrary()
			if err != nil {
				return err
			}
			defer cleanup()

			docs, err := store.ListDocuments(cmd.Context())
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(docs)
			}
			if len(docs) == 0 {
				r.Muted("The library is empty.")
				return nil
			}
			rows := make([][]any, 0, len(docs))
			for _, d := range docs {
				rows = append(rows, []any{d.Name, d.Nodes, d.Edges, d.UpdatedAt.Local().Format(time.DateTime)})
			}
			r.Table([]string{"Name", "Nodes", "Edges", "Updated"}, rows)
			return nil
		},
	}
}

func newLibrarySaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "save <name> <file>",
		Short:   "Store a document file under a name",
		Example: `  leapflow library save nightly flowchart-export.json`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			cmdCtx := NewCommandContext(cmd)

			doc, err := document.ReadFile(path)
			if err != nil {
				return err
			}

			store, cleanup, err := cmdCtx.OpenLibrary()
			if err != nil {
				return err
			}
			defer cleanup()

			info, err := store.SaveDocument(cmd.Context(), name, doc)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(info)
			}
			r.Success(fmt.Sprintf("saved %q (%d nodes, %d edges)", info.Name, info.Nodes, info.Edges))
			return nil
		},
	}
}

func newLibraryOpenCommand() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "open <name>",
		Short: "Restore a stored document",
		Long: `Write a stored document to a file, or to stdout when --out is not given.
The file format follows the --out extension (.json, .yaml, .yml).`,
		Example: `  leapflow library open nightly --out nightly.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, cleanup, err := cmdCtx.OpenLibrary()
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := store.LoadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if outPath == "" {
				data, err := document.Export(doc)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := document.WriteFile(outPath, doc); err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("wrote %s", outPath))
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "Write to this file instead of stdout")
	return cmd
}

func newLibraryRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a stored document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, cleanup, err := cmdCtx.OpenLibrary()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.DeleteDocument(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("deleted %q", args[0]))
			return nil
		},
	}
}
