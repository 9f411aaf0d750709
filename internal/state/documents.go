package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/leapflow/internal/document"
	"github.com/leapstack-labs/leapflow/pkg/core"
)

// SaveDocument stores doc under name. An existing document keeps its id
// and creation time.
func (s *SQLiteStore) SaveDocument(ctx context.Context, name string, doc *core.Document) (*DocumentInfo, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("save document: name is required")
	}
	if err := document.Validate(doc); err != nil {
		return nil, fmt.Errorf("save document %q: %w", name, err)
	}
	content, err := document.Export(doc)
	if err != nil {
		return nil, fmt.Errorf("save document %q: %w", name, err)
	}

	now := s.now().UTC()
	info := &DocumentInfo{
		ID:        generateID(),
		Name:      name,
		Nodes:     len(doc.Nodes),
		Edges:     len(doc.Edges),
		CreatedAt: now,
		UpdatedAt: now,
	}

	var created int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, name, content, node_count, edge_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			content = excluded.content,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			updated_at = excluded.updated_at
		RETURNING id, created_at`,
		info.ID, info.Name, content, info.Nodes, info.Edges, now.UnixMilli(), now.UnixMilli(),
	).Scan(&info.ID, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to save document %q: %w", name, err)
	}
	info.CreatedAt = time.UnixMilli(created).UTC()

	s.logger.Info("document saved", slog.String("name", name), slog.String("id", info.ID))
	return info, nil
}

// LoadDocument returns the document stored under name.
func (s *SQLiteStore) LoadDocument(ctx context.Context, name string) (*core.Document, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	var content []byte
	err := s.db.QueryRowContext(ctx, `SELECT content FROM documents WHERE name = ?`, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrDocumentNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %q: %w", name, err)
	}
	doc, err := document.Import(content)
	if err != nil {
		return nil, fmt.Errorf("stored document %q: %w", name, err)
	}
	return doc, nil
}

// ListDocuments returns every stored document, most recently updated first.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, node_count, edge_count, created_at, updated_at
		FROM documents
		ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		var created, updated int64
		if err := rows.Scan(&info.ID, &info.Name, &info.Nodes, &info.Edges, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		info.CreatedAt = time.UnixMilli(created).UTC()
		info.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return out, nil
}

// DeleteDocument removes the document stored under name.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, name string) error {
	if s.db == nil {
		return errNotOpened
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete document %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete document %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", core.ErrDocumentNotFound, name)
	}
	s.logger.Info("document deleted", slog.String("name", name))
	return nil
}
