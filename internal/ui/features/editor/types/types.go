// Package types provides shared types for the editor feature.
package types //nolint:revive // intentional: imported with alias editortypes

import "github.com/leapstack-labs/leapflow/internal/workspace"

// Summary is what the index page shows about the workspace.
type Summary struct {
	Nodes       int
	Edges       int
	Types       []TypeCount
	Selected    []string
	AllExpanded bool
	Last        workspace.Event
	Changes     uint64
}

// TypeCount is the number of nodes and rows of one type.
type TypeCount struct {
	Label string
	Color string
	Nodes int
	Rows  int
}
