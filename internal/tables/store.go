// Package tables holds the tabular half of the editor state: one ordered
// row collection per node type, each row keyed by the id of the node it
// mirrors.
package tables

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

// Store is an ordered set of rows per node type. The zero value is empty
// and ready to use. A Store is not safe for concurrent use.
type Store struct {
	rows map[core.NodeType][]core.Row
}

// New returns an empty store.
func New() *Store {
	return &Store{rows: make(map[core.NodeType][]core.Row)}
}

// FromTables builds a store from the document form. Rows are deep-copied.
func FromTables(t core.Tables) *Store {
	s := New()
	for _, nt := range core.TableTypes {
		for _, r := range t.Rows(nt) {
			s.rows[nt] = append(s.rows[nt], r.Clone())
		}
	}
	return s
}

// Tables returns the document form of the store. Every table is present,
// empty tables as empty slices.
func (s *Store) Tables() core.Tables {
	var out core.Tables
	for _, nt := range core.TableTypes {
		out.SetRows(nt, cloneRows(s.rows[nt]))
	}
	out.Normalize()
	return out
}

// Insert appends row to the table for nt. A row whose key is already
// present is rejected.
func (s *Store) Insert(nt core.NodeType, row core.Row) error {
	if s.rows == nil {
		s.rows = make(map[core.NodeType][]core.Row)
	}
	key := row.Key()
	if s.index(nt, key) >= 0 {
		return fmt.Errorf("%s row %q: %w", nt, key, core.ErrDuplicateID)
	}
	s.rows[nt] = append(s.rows[nt], row.Clone())
	return nil
}

// Rows returns a copy of the rows for nt in insertion order.
func (s *Store) Rows(nt core.NodeType) []core.Row {
	return cloneRows(s.rows[nt])
}

// Row returns a copy of the row keyed by key.
func (s *Store) Row(nt core.NodeType, key string) (core.Row, bool) {
	i := s.index(nt, key)
	if i < 0 {
		return nil, false
	}
	return s.rows[nt][i].Clone(), true
}

// Has reports whether a row keyed by key exists for nt.
func (s *Store) Has(nt core.NodeType, key string) bool {
	return s.index(nt, key) >= 0
}

// Update sets one field of the row keyed by key. Other fields and the row's
// position are untouched.
func (s *Store) Update(nt core.NodeType, key, field string, value any) error {
	i := s.index(nt, key)
	if i < 0 {
		return fmt.Errorf("%s row %q: %w", nt, key, core.ErrRowNotFound)
	}
	row := s.rows[nt][i].Clone()
	row[field] = value
	s.rows[nt][i] = row
	return nil
}

// Replace overwrites the row with the same key as row, keeping its
// position in the table.
func (s *Store) Replace(nt core.NodeType, row core.Row) error {
	key := row.Key()
	i := s.index(nt, key)
	if i < 0 {
		return fmt.Errorf("%s row %q: %w", nt, key, core.ErrRowNotFound)
	}
	s.rows[nt][i] = row.Clone()
	return nil
}

// Remove deletes the row keyed by key. Removing an absent row is a no-op;
// it reports whether a row was removed.
func (s *Store) Remove(nt core.NodeType, key string) bool {
	i := s.index(nt, key)
	if i < 0 {
		return false
	}
	s.rows[nt] = slices.Delete(s.rows[nt], i, i+1)
	return true
}

// Prune drops every row for which keep returns false and returns the number
// of rows removed.
func (s *Store) Prune(keep func(nt core.NodeType, key string) bool) int {
	removed := 0
	for nt, rows := range s.rows {
		kept := rows[:0:0]
		for _, r := range rows {
			if keep(nt, r.Key()) {
				kept = append(kept, r)
				continue
			}
			removed++
		}
		s.rows[nt] = kept
	}
	return removed
}

// Len returns the number of rows for nt.
func (s *Store) Len(nt core.NodeType) int {
	return len(s.rows[nt])
}

// Total returns the number of rows across all tables.
func (s *Store) Total() int {
	n := 0
	for _, rows := range s.rows {
		n += len(rows)
	}
	return n
}

// Clone returns a deep copy of s.
func (s *Store) Clone() *Store {
	out := New()
	for nt, rows := range s.rows {
		out.rows[nt] = cloneRows(rows)
	}
	return out
}

// Each calls fn for every row in document table order.
func (s *Store) Each(fn func(nt core.NodeType, row core.Row)) {
	for _, nt := range core.TableTypes {
		for _, r := range s.rows[nt] {
			fn(nt, r)
		}
	}
}

func (s *Store) index(nt core.NodeType, key string) int {
	return slices.IndexFunc(s.rows[nt], func(r core.Row) bool { return r.Key() == key })
}

func cloneRows(rows []core.Row) []core.Row {
	if rows == nil {
		return nil
	}
	out := make([]core.Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
