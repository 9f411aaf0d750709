package workspace

import (
	"fmt"
	"reflect"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

// ProblemKind classifies a consistency problem.
type ProblemKind string

// Problem kinds reported by Check.
const (
	ProblemMissingRow   ProblemKind = "missing_row"
	ProblemOrphanRow    ProblemKind = "orphan_row"
	ProblemFieldDrift   ProblemKind = "field_drift"
	ProblemDanglingEdge ProblemKind = "dangling_edge"
	ProblemUnknownType  ProblemKind = "unknown_type"
	ProblemIllegalEdge  ProblemKind = "illegal_edge"
)

// Problem is one consistency violation.
type Problem struct {
	Kind    ProblemKind `json:"kind"`
	ID      string      `json:"id"`
	Message string      `json:"message"`
}

// Report is the result of Check.
type Report struct {
	Problems []Problem `json:"problems"`
}

// OK reports whether no problems were found.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) add(kind ProblemKind, id, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{Kind: kind, ID: id, Message: fmt.Sprintf(format, args...)})
}

// Check verifies the pairing between nodes and rows, that edges join live
// nodes with an admissible type pair, and that every node type is known.
// A workspace mutated only through its operations always passes; imported
// documents may not.
func (w *Workspace) Check() Report {
	var r Report
	live := make(map[string]core.NodeType, len(w.nodes))

	for _, n := range w.nodes {
		live[n.ID] = n.Kind()
		spec, ok := w.spec(n)
		if !ok {
			r.add(ProblemUnknownType, n.ID, "node %s has unknown type %q", n.ID, n.Kind())
			continue
		}
		if !spec.TableBacked {
			continue
		}
		row, ok := w.tables.Row(spec.Type, n.ID)
		if !ok {
			r.add(ProblemMissingRow, n.ID, "node %s has no row in %s", n.ID, spec.TableKey())
			continue
		}
		for _, f := range spec.Fields {
			nv, inNode := n.Data[f.Name]
			rv, inRow := row[f.Name]
			if inNode && inRow && !reflect.DeepEqual(nv, rv) {
				r.add(ProblemFieldDrift, n.ID, "%s.%s differs: node %v, row %v", n.ID, f.Name, nv, rv)
			}
		}
	}

	w.tables.Each(func(nt core.NodeType, row core.Row) {
		if kind, ok := live[row.Key()]; !ok || kind != nt {
			r.add(ProblemOrphanRow, row.Key(), "row %q in %s has no matching node", row.Key(), core.TableKey(nt))
		}
	})

	for _, e := range w.edges {
		src, okS := live[e.Source]
		tgt, okT := live[e.Target]
		if !okS || !okT {
			r.add(ProblemDanglingEdge, e.ID, "edge %s references a missing node", e.ID)
			continue
		}
		if _, err := w.gate(e.Source, e.Target); err != nil {
			r.add(ProblemIllegalEdge, e.ID, "edge %s: %s → %s is not an admissible connection", e.ID, src, tgt)
		}
	}
	return r
}
