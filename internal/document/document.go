// Package document converts editor state to and from its interchange form.
//
// The JSON form is the one the editor reads and writes:
//
//	{
//	  "nodes":  [{"id", "type", "position": {"x", "y"}, "data": {...}}],
//	  "edges":  [{"id", "source", "target", "sourceHandle", "targetHandle", "type", "style"}],
//	  "tables": {"prerequisiteData": [...], ..., "dataModelData": [...]}
//	}
//
// YAML carries the same structure for hand editing and review.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

// Format is an encoding of a document.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat resolves a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported document format %q", s)
	}
}

// wire mirrors core.Document with pointer fields so absent and null
// top-level keys can be told apart from empty collections.
type wire struct {
	Nodes  *[]core.Node `json:"nodes" yaml:"nodes"`
	Edges  *[]core.Edge `json:"edges" yaml:"edges"`
	Tables *core.Tables `json:"tables" yaml:"tables"`
}

// Export encodes doc as indented JSON. Transient attributes (selection,
// drag opacity) are not written.
func Export(doc *core.Document) ([]byte, error) {
	return Encode(doc, FormatJSON)
}

// Import decodes a JSON document and validates it.
func Import(data []byte) (*core.Document, error) {
	return Decode(data, FormatJSON)
}

// Encode writes doc in the given format.
func Encode(doc *core.Document, f Format) ([]byte, error) {
	out := Strip(doc)
	switch f {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(out); err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("encode document: unsupported format %q", f)
	}
}

// Decode parses data in the given format. Missing or null nodes or edges,
// unparseable content and referentially broken documents fail with
// core.ErrInvalidDocument. Absent tables decode as empty.
func Decode(data []byte, f Format) (*core.Document, error) {
	var w wire
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("decode document: unsupported format %q", f)
	}

	if w.Nodes == nil {
		return nil, fmt.Errorf("%w: missing nodes", core.ErrInvalidDocument)
	}
	if w.Edges == nil {
		return nil, fmt.Errorf("%w: missing edges", core.ErrInvalidDocument)
	}

	doc := &core.Document{Nodes: *w.Nodes, Edges: *w.Edges}
	if w.Tables != nil {
		doc.Tables = *w.Tables
	}
	if doc.Nodes == nil {
		doc.Nodes = []core.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []core.Edge{}
	}
	doc.Tables.Normalize()

	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks referential integrity: node ids are present and unique,
// edge ids are unique, every edge joins two existing nodes, and no table
// holds two rows with the same key.
func Validate(doc *core.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: empty document", core.ErrInvalidDocument)
	}
	nodes := make(map[string]bool, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %d has no id", core.ErrInvalidDocument, i)
		}
		if nodes[n.ID] {
			return fmt.Errorf("%w: duplicate node id %q", core.ErrInvalidDocument, n.ID)
		}
		nodes[n.ID] = true
	}
	edges := make(map[string]bool, len(doc.Edges))
	for _, e := range doc.Edges {
		if edges[e.ID] {
			return fmt.Errorf("%w: duplicate edge id %q", core.ErrInvalidDocument, e.ID)
		}
		edges[e.ID] = true
		if !nodes[e.Source] || !nodes[e.Target] {
			return fmt.Errorf("%w: edge %q references a missing node", core.ErrInvalidDocument, e.ID)
		}
	}
	for _, nt := range core.TableTypes {
		keys := make(map[string]bool)
		for _, r := range doc.Tables.Rows(nt) {
			if keys[r.Key()] {
				return fmt.Errorf("%w: duplicate row key %q in %s", core.ErrInvalidDocument, r.Key(), core.TableKey(nt))
			}
			keys[r.Key()] = true
		}
	}
	return nil
}

// Strip returns a deep copy of doc without transient attributes and with
// every collection present.
func Strip(doc *core.Document) *core.Document {
	if doc == nil {
		doc = &core.Document{}
	}
	out := doc.Clone()
	for i := range out.Nodes {
		out.Nodes[i].Selected = false
		out.Nodes[i].Style = core.NodeStyle{}
	}
	for i := range out.Edges {
		out.Edges[i].Selected = false
	}
	if out.Nodes == nil {
		out.Nodes = []core.Node{}
	}
	if out.Edges == nil {
		out.Edges = []core.Edge{}
	}
	out.Tables.Normalize()
	return out
}

// FileName returns the default export file name for a snapshot taken at now.
func FileName(now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "flowchart-export-" + ts + ".json"
}
