package execution

import "errors"

var (
	// ErrDuplicateOutput indicates a second SetNodeOutput call for the same
	// node id. Outputs are write-once; only the node's own executor writes.
	ErrDuplicateOutput = errors.New("node output already recorded")

	// ErrInvalidTransition indicates a run status change the state machine
	// does not permit (e.g. pausing a pending run).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTerminalStatus indicates an attempted transition out of
	// completed, failed or stopped.
	ErrTerminalStatus = errors.New("run already in terminal status")
)
