// Package state provides the local document library: named editor
// documents kept in a SQLite database.
package state

import (
	"context"
	"time"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

// Store persists named documents.
type Store interface {
	// Open opens the database at path; ":memory:" opens a private
	// in-memory database.
	Open(path string) error
	// Close releases the database.
	Close() error
	// Migrate applies pending schema migrations.
	Migrate() error

	// SaveDocument stores doc under name, replacing any previous version.
	SaveDocument(ctx context.Context, name string, doc *core.Document) (*DocumentInfo, error)
	// LoadDocument returns the document stored under name.
	LoadDocument(ctx context.Context, name string) (*core.Document, error)
	// ListDocuments returns every stored document, most recently updated first.
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	// DeleteDocument removes the document stored under name.
	DeleteDocument(ctx context.Context, name string) error
}

// DocumentInfo describes a stored document without its content.
type DocumentInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var _ Store = (*SQLiteStore)(nil)
