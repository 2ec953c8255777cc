package graph

import (
	"sort"

	"github.com/vk/flowgrid/internal/workflow"
)

// Graph is the validated adjacency form of a workflow. It is immutable after
// Build; the engine copies InDegrees before decrementing.
type Graph struct {
	// nodes stores the declared nodes keyed by id.
	nodes map[string]workflow.Node
	// downstream maps a node id to the ids of nodes that depend on it.
	downstream map[string][]string
	// inDegree maps a node id to its number of incoming edges.
	inDegree map[string]int
}

// Node returns the declared node for an id.
func (g *Graph) Node(id string) (workflow.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// NodeIDs returns every node id, sorted for deterministic iteration.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Downstream returns the ids of nodes that directly depend on the given node.
func (g *Graph) Downstream(id string) []string {
	return g.downstream[id]
}

// InDegrees returns a fresh copy of the in-degree map, safe for the caller
// to decrement during scheduling.
func (g *Graph) InDegrees() map[string]int {
	out := make(map[string]int, len(g.inDegree))
	for id, n := range g.inDegree {
		out[id] = n
	}
	return out
}
