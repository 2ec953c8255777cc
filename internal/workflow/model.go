// Package workflow defines the declarative model of a workflow: typed nodes
// connected by directed data-flow edges. The model is built once by the
// caller (or a file loader) and treated as read-only for the duration of a
// run; all execution state lives elsewhere.
package workflow

import (
	"fmt"
)

// Node is a single declared processing step.
type Node struct {
	ID     string         `json:"id" yaml:"id"`
	Type   string         `json:"type" yaml:"type"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Edge is a directed dependency from Source to Target. Target cannot start
// until Source has completed, and Target may read Source's output.
type Edge struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Workflow is the immutable definition of a processing graph.
type Workflow struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// NodeByID returns the node with the given id.
func (w *Workflow) NodeByID(id string) (Node, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Validate checks the model-level invariants: at least one node, non-empty
// unique node ids, and a type on every node. Edge endpoint resolution and
// acyclicity are the graph builder's concern.
func (w *Workflow) Validate() error {
	if len(w.Nodes) == 0 {
		return fmt.Errorf("workflow %q: %w", w.Name, ErrNoNodes)
	}
	seen := make(map[string]struct{}, len(w.Nodes))
	for _, n := range w.Nodes {
		if n.ID == "" {
			return fmt.Errorf("workflow %q: %w", w.Name, ErrEmptyNodeID)
		}
		if n.Type == "" {
			return fmt.Errorf("node %q: %w", n.ID, ErrEmptyNodeType)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("node %q: %w", n.ID, ErrDuplicateNodeID)
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}
