// Package dag analyses the pipeline graph of a document: cycle detection,
// topological ordering and execution levels.
package dag

import (
	"fmt"
	"slices"
	"sort"

	"github.com/leapstack-labs/leapflow/pkg/core"
)

// Node is a vertex of the pipeline graph.
type Node struct {
	ID   string
	Type core.NodeType
}

// Graph is a directed graph over pipeline nodes. Edges point from the
// feeding node to the node it feeds.
type Graph struct {
	nodes   map[string]*Node
	edges   map[string][]string // source -> targets
	parents map[string][]string // target -> sources
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// FromDocument builds the graph of doc. Edges with a missing endpoint are
// reported as errors; self-loops are kept so HasCycle can report them.
func FromDocument(doc *core.Document) (*Graph, error) {
	g := NewGraph()
	for _, n := range doc.Nodes {
		g.AddNode(n.ID, n.Kind())
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(e.Source, e.Target); err != nil {
			return nil, fmt.Errorf("edge %s: %w", e.ID, err)
		}
	}
	return g, nil
}

// AddNode adds a node, or updates the type of an existing one.
func (g *Graph) AddNode(id string, t core.NodeType) {
	if n, exists := g.nodes[id]; exists {
		n.Type = t
		return
	}
	g.nodes[id] = &Node{ID: id, Type: t}
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge adds a directed edge from source to target. Both must exist;
// duplicates are ignored.
func (g *Graph) AddEdge(source, target string) error {
	if _, exists := g.nodes[source]; !exists {
		return fmt.Errorf("source node %q: %w", source, core.ErrNodeNotFound)
	}
	if _, exists := g.nodes[target]; !exists {
		return fmt.Errorf("target node %q: %w", target, core.ErrNodeNotFound)
	}
	if !slices.Contains(g.edges[source], target) {
		g.edges[source] = append(g.edges[source], target)
	}
	if !slices.Contains(g.parents[target], source) {
		g.parents[target] = append(g.parents[target], source)
	}
	return nil
}

// GetNode returns a node by id.
func (g *Graph) GetNode(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// GetParents returns the nodes feeding id.
func (g *Graph) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the nodes id feeds.
func (g *Graph) GetChildren(id string) []string {
	return g.edges[id]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.edges {
		count += len(targets)
	}
	return count
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasCycle reports whether the graph contains a cycle, with one cycle path
// whose first and last elements are the same node.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	from := make(map[string]string)
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, next := range g.edges[id] {
			if !visited[next] {
				from[next] = id
				if dfs(next) {
					return true
				}
				continue
			}
			if onStack[next] {
				cycle = []string{next}
				for cur := id; cur != next; cur = from[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for _, id := range g.sortedIDs() {
		if !visited[id] && dfs(id) {
			return true, cycle
		}
	}
	return false, nil
}

// TopologicalSort returns nodes with every node after the nodes feeding it.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	levels, err := g.GetExecutionLevels()
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(g.nodes))
	for _, level := range levels {
		for _, id := range level {
			out = append(out, g.nodes[id])
		}
	}
	return out, nil
}

// GetExecutionLevels groups nodes by depth using Kahn's algorithm. Level 0
// holds nodes nothing feeds; a node sits one level below its deepest
// parent. Ids within a level are sorted.
func (g *Graph) GetExecutionLevels() ([][]string, error) {
	if cyclic, path := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("cycle detected: %v", path)
	}

	indegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		indegree[id] = len(g.parents[id])
	}

	var levels [][]string
	var current []string
	for _, id := range g.sortedIDs() {
		if indegree[id] == 0 {
			current = append(current, id)
		}
	}
	for len(current) > 0 {
		levels = append(levels, current)
		var next []string
		for _, id := range current {
			for _, child := range g.edges[id] {
				indegree[child]--
				if indegree[child] == 0 {
					next = append(next, child)
				}
			}
		}
		sort.Strings(next)
		current = next
	}
	return levels, nil
}

// GetDownstream returns every node reachable from the given ids, the ids
// themselves included.
func (g *Graph) GetDownstream(ids []string) []string {
	seen := make(map[string]bool)
	var walk func(id string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, child := range g.edges[id] {
			walk(child)
		}
	}
	for _, id := range ids {
		if _, ok := g.nodes[id]; ok {
			walk(id)
		}
	}
	return sortedKeys(seen)
}

// GetUpstream returns every node that feeds id directly or indirectly.
func (g *Graph) GetUpstream(id string) []string {
	seen := make(map[string]bool)
	var walk func(n string)
	walk = func(n string) {
		for _, p := range g.parents[n] {
			if !seen[p] {
				seen[p] = true
				walk(p)
			}
		}
	}
	walk(id)
	return sortedKeys(seen)
}

// GetRoots returns nodes nothing feeds.
func (g *Graph) GetRoots() []string {
	var roots []string
	for _, id := range g.sortedIDs() {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// GetLeaves returns nodes that feed nothing.
func (g *Graph) GetLeaves() []string {
	var leaves []string
	for _, id := range g.sortedIDs() {
		if len(g.edges[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// Subgraph returns a graph restricted to ids and the edges between them.
func (g *Graph) Subgraph(ids []string) *Graph {
	sub := NewGraph()
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok {
			keep[id] = true
			sub.AddNode(id, n.Type)
		}
	}
	for id := range keep {
		for _, child := range g.edges[id] {
			if keep[child] {
				_ = sub.AddEdge(id, child)
			}
		}
	}
	return sub
}

// OfType returns the ids of nodes of type t, sorted.
func (g *Graph) OfType(t core.NodeType) []string {
	var out []string
	for _, id := range g.sortedIDs() {
		if g.nodes[id].Type == t {
			out = append(out, id)
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
