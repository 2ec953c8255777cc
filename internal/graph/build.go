package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/workflow"
)

// Build constructs a validated adjacency graph from a workflow definition.
func Build(ctx context.Context, wf *workflow.Workflow) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.", "workflow", wf.Name)

	if err := wf.Validate(); err != nil {
		return nil, err
	}

	g := &Graph{
		nodes:      make(map[string]workflow.Node, len(wf.Nodes)),
		downstream: make(map[string][]string, len(wf.Nodes)),
		inDegree:   make(map[string]int, len(wf.Nodes)),
	}
	for _, n := range wf.Nodes {
		g.nodes[n.ID] = n
		g.inDegree[n.ID] = 0
	}

	for _, e := range wf.Edges {
		if _, ok := g.nodes[e.Source]; !ok {
			return nil, fmt.Errorf("edge %q references unknown source node %q: %w", e.ID, e.Source, ErrDanglingEdge)
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return nil, fmt.Errorf("edge %q references unknown target node %q: %w", e.ID, e.Target, ErrDanglingEdge)
		}
		if e.Source == e.Target {
			return nil, fmt.Errorf("edge %q is self-referential on node %q: %w", e.ID, e.Source, ErrCycleDetected)
		}
		g.downstream[e.Source] = append(g.downstream[e.Source], e.Target)
		g.inDegree[e.Target]++
	}
	logger.Debug("Build: adjacency construction complete.", "node_count", len(g.nodes))

	// Keep downstream order stable regardless of edge declaration order.
	for id := range g.downstream {
		sort.Strings(g.downstream[id])
	}

	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	logger.Debug("Build: cycle detection passed.")

	return g, nil
}

// detectCycles runs a depth-first search with three node sets:
// permanent (fully explored, known safe), temporary (the current recursion
// stack), and unvisited. Hitting a temporary node again means a cycle.
func (g *Graph) detectCycles() error {
	permanent := make(map[string]bool, len(g.nodes))
	temporary := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		if permanent[id] {
			return nil
		}
		if temporary[id] {
			return fmt.Errorf("node %q is on a dependency cycle: %w", id, ErrCycleDetected)
		}

		temporary[id] = true
		for _, next := range g.downstream[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		delete(temporary, id)
		permanent[id] = true

		return nil
	}

	// Iterate in sorted order so the reported cycle node is deterministic.
	for _, id := range g.NodeIDs() {
		if !permanent[id] {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	return nil
}
