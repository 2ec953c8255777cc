package workflow

import "errors"

var (
	// ErrNoNodes indicates a workflow definition with an empty node list.
	ErrNoNodes = errors.New("workflow has no nodes")

	// ErrEmptyNodeID indicates a node declared without an id.
	ErrEmptyNodeID = errors.New("node id must not be empty")

	// ErrEmptyNodeType indicates a node declared without a type.
	ErrEmptyNodeType = errors.New("node type must not be empty")

	// ErrDuplicateNodeID indicates two nodes sharing the same id.
	ErrDuplicateNodeID = errors.New("duplicate node id")
)
