package workspace

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapflow/internal/document"
	"github.com/leapstack-labs/leapflow/internal/tables"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

// Export returns the state as an interchange document, without transient
// attributes.
func (w *Workspace) Export() *core.Document {
	return document.Strip(w.Snapshot())
}

// Import replaces the whole state with doc. The document is validated
// first; on error the current state is untouched. There is no merge.
func (w *Workspace) Import(doc *core.Document) error {
	if err := document.Validate(doc); err != nil {
		w.logger.Warn("import rejected", slog.String("error", err.Error()))
		return fmt.Errorf("import: %w", err)
	}
	for _, n := range doc.Nodes {
		if _, ok := w.spec(n); !ok {
			w.logger.Warn("imported node has unknown type", slog.String("id", n.ID), slog.String("type", string(n.Kind())))
		}
	}

	in := document.Strip(doc)
	w.nodes = in.Nodes
	w.edges = in.Edges
	w.tables = tables.FromTables(in.Tables)
	w.dragSource = ""
	w.toggled = nil

	w.logger.Info("document imported",
		slog.Int("nodes", len(w.nodes)),
		slog.Int("edges", len(w.edges)),
		slog.Int("rows", w.tables.Total()))
	w.emit(OpImport)
	return nil
}

// Load builds a workspace holding doc.
func Load(cfg Config, doc *core.Document) (*Workspace, error) {
	w := New(cfg)
	if err := w.Import(doc); err != nil {
		return nil, err
	}
	return w, nil
}
