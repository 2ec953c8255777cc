package execution

// Status is the lifecycle state of one workflow run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusStopped   Status = "stopped"
	StatusPaused    Status = "paused"
)

// Terminal reports whether no further status transitions are permitted.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusStopped:
		return true
	}
	return false
}

// NodeStatus is the lifecycle state of a single node within a run.
type NodeStatus string

const (
	NodePending   NodeStatus = "pending"
	NodeRunning   NodeStatus = "running"
	NodeCompleted NodeStatus = "completed"
	NodeFailed    NodeStatus = "failed"
	NodeSkipped   NodeStatus = "skipped"
)

// Terminal reports whether the node has finished, one way or another.
func (s NodeStatus) Terminal() bool {
	switch s {
	case NodeCompleted, NodeFailed, NodeSkipped:
		return true
	}
	return false
}

// canTransition encodes the run status state machine:
// pending → running → {completed, failed, stopped}; running ⇄ paused;
// paused → stopped (stop wins over pause). Terminal states accept nothing.
func canTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case StatusRunning:
		return from == StatusPending || from == StatusPaused
	case StatusPaused:
		return from == StatusRunning
	case StatusCompleted, StatusFailed:
		return from == StatusRunning || from == StatusPending
	case StatusStopped:
		return from == StatusRunning || from == StatusPaused
	}
	return false
}
