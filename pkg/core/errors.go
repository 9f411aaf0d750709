package core

import "errors"

// Sentinel errors. Callers wrap them with context and match with errors.Is.
var (
	// ErrUnknownNodeType is returned when a type string is not in the registry.
	ErrUnknownNodeType = errors.New("unknown node type")
	// ErrNodeNotFound is returned when an id does not address an existing node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned when an id does not address an existing edge.
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrDuplicateID is returned when an insert would reuse a live id.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrInvalidConnection is returned when an edge is refused by the connection rules.
	ErrInvalidConnection = errors.New("invalid connection")
	// ErrInvalidDocument is returned when an imported document is malformed.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUnknownField is returned when a table edit names a column the type does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue is returned when a value does not fit a field's kind.
	ErrInvalidValue = errors.New("invalid value")
	// ErrRowNotFound is returned when a table key has no row.
	ErrRowNotFound = errors.New("row not found")
	// ErrDocumentNotFound is returned by the document library for unknown names.
	ErrDocumentNotFound = errors.New("document not found")
)
