// Package registry provides the catalogue of node types.
// Each entry describes a type's palette presentation and the schema of the
// fields it carries, with defaults. Tables, forms, and the drop handler all
// derive their shape from here.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapflow/pkg/core"
	"golang.org/x/text/cases"
)

// FieldKind is the editor kind of a field.
type FieldKind string

// Field kinds.
const (
	KindText   FieldKind = "text"
	KindBool   FieldKind = "bool"
	KindSelect FieldKind = "select"
)

// Option is one allowed value of a select field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldSpec describes one column of a node type.
type FieldSpec struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Default any       `json:"default"`
	Options []Option  `json:"options,omitempty"`
}

// allows reports whether v is one of the field's option values.
func (f FieldSpec) allows(v string) bool {
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// TypeSpec is a registry entry.
type TypeSpec struct {
	Type        core.NodeType `json:"type"`
	Label       string        `json:"label"`
	Color       string        `json:"color"`
	BorderColor string        `json:"borderColor"`
	Icon        string        `json:"icon,omitempty"`
	// TableBacked types are mirrored row-for-node in a table.
	TableBacked bool        `json:"tableBacked"`
	Fields      []FieldSpec `json:"fields"`
}

// TableKey returns the document key of the type's table.
func (s TypeSpec) TableKey() string {
	return core.TableKey(s.Type)
}

// Field returns the field spec named name.
func (s TypeSpec) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// HasColumn reports whether name is a table column of the type.
func (s TypeSpec) HasColumn(name string) bool {
	_, ok := s.Field(name)
	return ok
}

// Registry maps node type names to their specs. Lookups are safe for
// concurrent use; registration order is palette order.
type Registry struct {
	mu    sync.RWMutex
	specs map[core.NodeType]TypeSpec
	order []core.NodeType
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{specs: make(map[core.NodeType]TypeSpec)}
}

// Register adds or replaces a type spec.
func (r *Registry) Register(spec TypeSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.Type]; !exists {
		r.order = append(r.order, spec.Type)
	}
	r.specs[spec.Type] = spec
}

// Lookup returns the spec registered for t.
func (r *Registry) Lookup(t core.NodeType) (TypeSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[t]
	return spec, ok
}

// Resolve is Lookup for raw type strings, returning core.ErrUnknownNodeType
// for anything unregistered.
func (r *Registry) Resolve(name string) (TypeSpec, error) {
	spec, ok := r.Lookup(core.NodeType(name))
	if !ok {
		return TypeSpec{}, fmt.Errorf("%w: %q", core.ErrUnknownNodeType, name)
	}
	return spec, nil
}

// Types returns every spec in palette order.
func (r *Registry) Types() []TypeSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TypeSpec, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.specs[t])
	}
	return out
}

// Search filters the palette by a case-insensitive substring of the label or
// type name. An empty query returns every type.
func (r *Registry) Search(query string) []TypeSpec {
	all := r.Types()
	query = strings.TrimSpace(query)
	if query == "" {
		return all
	}
	fold := cases.Fold()
	q := fold.String(query)
	out := make([]TypeSpec, 0, len(all))
	for _, spec := range all {
		if strings.Contains(fold.String(spec.Label), q) || strings.Contains(fold.String(string(spec.Type)), q) {
			out = append(out, spec)
		}
	}
	return out
}

// BlankRow returns a row of column defaults keyed by key.
func (s TypeSpec) BlankRow(key string) core.Row {
	row := core.NewRow(key)
	for _, f := range s.Fields {
		row[f.Name] = f.Default
	}
	return row
}

// InitialData returns the data of a freshly dropped node.
func (s TypeSpec) InitialData(id string) core.Data {
	data := core.Data{
		core.DataKeyID:          id,
		core.DataKeyTitle:       s.Label,
		core.DataKeyType:        string(s.Type),
		core.DataKeyDescription: DefaultDescription,
		core.DataKeyIsExpanded:  true,
	}
	for _, f := range s.Fields {
		data[f.Name] = f.Default
	}
	return data
}

// RowFromData builds a row keyed by key from the column values in data,
// falling back to defaults for absent columns.
func (s TypeSpec) RowFromData(key string, data core.Data) core.Row {
	row := s.BlankRow(key)
	for _, f := range s.Fields {
		if v, ok := data[f.Name]; ok {
			row[f.Name] = v
		}
	}
	return row.Clone()
}

// CheckValue verifies that value fits the kind of the named column.
// Free-text content is not inspected.
func (s TypeSpec) CheckValue(field string, value any) error {
	f, ok := s.Field(field)
	if !ok {
		return fmt.Errorf("%w: %s has no column %q", core.ErrUnknownField, s.Type, field)
	}
	switch f.Kind {
	case KindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %s.%s expects a boolean, got %T", core.ErrInvalidValue, s.Type, field, value)
		}
	case KindSelect:
		v, ok := value.(string)
		if !ok || !f.allows(v) {
			return fmt.Errorf("%w: %s.%s does not accept %v", core.ErrInvalidValue, s.Type, field, value)
		}
	default:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: %s.%s expects text, got %T", core.ErrInvalidValue, s.Type, field, value)
		}
	}
	return nil
}
