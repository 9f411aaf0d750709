// Package core defines the shared language of the leapflow system.
//
// This package contains:
//   - Domain entities (Node, Edge, Row, Document)
//   - The node type vocabulary (NodeType)
//   - Sentinel errors shared by every layer
//
// The Golden Rule: pkg/core imports ONLY the stdlib.
// All other packages depend on core, not the reverse.
package core
