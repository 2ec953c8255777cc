package graph

import "errors"

var (
	// ErrDanglingEdge indicates an edge whose source or target references a
	// node id absent from the workflow.
	ErrDanglingEdge = errors.New("dangling edge")

	// ErrCycleDetected indicates the workflow is not a DAG. The wrapping
	// error names at least one node on the cycle.
	ErrCycleDetected = errors.New("cycle detected")
)
