package editor

import (
	editortypes "github.com/leapstack-labs/leapflow/internal/ui/features/editor/types"
	"github.com/leapstack-labs/leapflow/internal/workspace"
)

func buildSummary(ws *workspace.Workspace) editortypes.Summary {
	nodes := ws.Nodes()
	s := editortypes.Summary{
		Nodes:       len(nodes),
		Edges:       len(ws.Edges()),
		AllExpanded: ws.AllExpanded(),
	}
	count := make(map[string]int)
	for _, n := range nodes {
		count[string(n.Kind())]++
	}
	for _, spec := range ws.Registry().Types() {
		s.Types = append(s.Types, editortypes.TypeCount{
			Label: spec.Label,
			Color: spec.Color,
			Nodes: count[string(spec.Type)],
			Rows:  len(ws.Rows(spec.Type)),
		})
	}
	for _, n := range ws.Selected() {
		s.Selected = append(s.Selected, n.ID)
	}
	return s
}
