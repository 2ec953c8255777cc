// Package execution holds the mutable state of one workflow run: status,
// input payload, named variables, per-node outputs and statuses, and the
// ordered log. The Context is shared by every concurrently running node in a
// round, so all mutation goes through internally synchronized methods;
// executors never reach into each other's state directly.
package execution

import (
	"fmt"
	"sync"
	"time"
)

// Summary aggregates a run for status reporting.
type Summary struct {
	StartedAt  time.Time          `json:"started_at,omitempty"`
	FinishedAt time.Time          `json:"finished_at,omitempty"`
	Duration   time.Duration      `json:"duration"`
	NodeCounts map[NodeStatus]int `json:"node_counts"`
	TotalNodes int                `json:"total_nodes"`
}

// Context is the per-run state container. One instance exists per run,
// created when the run starts and discarded (or persisted by the storage
// collaborator) once it reaches a terminal status.
type Context struct {
	mu sync.Mutex

	runID     string
	status    Status
	input     map[string]any
	variables map[string]any

	nodeOutputs map[string]any
	nodeStatus  map[string]NodeStatus

	logs []LogEntry

	output     any
	failure    string
	stopReason string

	startedAt  time.Time
	finishedAt time.Time

	onLog    LogObserver
	onStatus StatusObserver
}

// NewContext creates a pending run context for the given input payload.
func NewContext(runID string, input map[string]any) *Context {
	if input == nil {
		input = map[string]any{}
	}
	return &Context{
		runID:       runID,
		status:      StatusPending,
		input:       input,
		variables:   make(map[string]any),
		nodeOutputs: make(map[string]any),
		nodeStatus:  make(map[string]NodeStatus),
	}
}

// SetLogObserver registers a callback invoked synchronously after every
// appended log entry. Must be set before the run starts.
func (c *Context) SetLogObserver(fn LogObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLog = fn
}

// SetStatusObserver registers a callback invoked after every status change.
// Must be set before the run starts.
func (c *Context) SetStatusObserver(fn StatusObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatus = fn
}

// RunID returns the run's identifier.
func (c *Context) RunID() string { return c.runID }

// Status returns the current run status.
func (c *Context) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Input returns the run's initial payload. Callers must treat it as
// read-only.
func (c *Context) Input() map[string]any { return c.input }

// SetVariable stores a named variable. Sibling nodes writing the same key
// race last-write-wins; the engine does not namespace variables per node.
func (c *Context) SetVariable(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variables[key] = value
}

// Variable returns a named variable, or def when unset.
func (c *Context) Variable(key string, def any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.variables[key]; ok {
		return v
	}
	return def
}

// SetNodeOutput records a node's output. Outputs are write-once; a second
// write for the same id fails with ErrDuplicateOutput.
func (c *Context) SetNodeOutput(nodeID string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.nodeOutputs[nodeID]; exists {
		return fmt.Errorf("node %q: %w", nodeID, ErrDuplicateOutput)
	}
	c.nodeOutputs[nodeID] = value
	return nil
}

// NodeOutput returns a node's recorded output, or def when absent.
func (c *Context) NodeOutput(nodeID string, def any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.nodeOutputs[nodeID]; ok {
		return v
	}
	return def
}

// NodeOutputs returns a copy of all recorded outputs.
func (c *Context) NodeOutputs() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.nodeOutputs))
	for k, v := range c.nodeOutputs {
		out[k] = v
	}
	return out
}

// SetNodeStatus records a node's lifecycle state.
func (c *Context) SetNodeStatus(nodeID string, status NodeStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodeStatus[nodeID] = status
}

// NodeStatus returns a node's lifecycle state, defaulting to pending.
func (c *Context) NodeStatus(nodeID string) NodeStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.nodeStatus[nodeID]; ok {
		return s
	}
	return NodePending
}

// NodeStatuses returns a copy of the per-node status map.
func (c *Context) NodeStatuses() map[string]NodeStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]NodeStatus, len(c.nodeStatus))
	for k, v := range c.nodeStatus {
		out[k] = v
	}
	return out
}

// RunningNodes returns the ids of nodes currently executing.
func (c *Context) RunningNodes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []string
	for id, s := range c.nodeStatus {
		if s == NodeRunning {
			ids = append(ids, id)
		}
	}
	return ids
}

// AddLog appends an entry to the run log and notifies the registered log
// observer. Prior entries are never mutated.
func (c *Context) AddLog(level LogLevel, message, nodeID string, metadata map[string]any) {
	c.mu.Lock()
	entry := LogEntry{
		Level:     level,
		Message:   message,
		NodeID:    nodeID,
		Metadata:  metadata,
		Timestamp: time.Now(),
	}
	c.logs = append(c.logs, entry)
	onLog := c.onLog
	c.mu.Unlock()

	if onLog != nil {
		onLog(entry)
	}
}

// Logs returns a copy of the ordered run log.
func (c *Context) Logs() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LogEntry, len(c.logs))
	copy(out, c.logs)
	return out
}

// Output returns the run's final output, if the run completed.
func (c *Context) Output() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

// FailureMessage returns the first captured error message for a failed run.
func (c *Context) FailureMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// StopReason returns the operator-supplied reason for a stopped run.
func (c *Context) StopReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopReason
}

// Progress returns the fraction of nodes in a terminal state, in [0, 1].
// Runs with no nodes report 0 until they finish.
func (c *Context) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.nodeStatus) == 0 {
		if c.status.Terminal() {
			return 1
		}
		return 0
	}
	done := 0
	for _, s := range c.nodeStatus {
		if s.Terminal() {
			done++
		}
	}
	return float64(done) / float64(len(c.nodeStatus))
}

// Summary returns duration and per-node counts for the run so far.
func (c *Context) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summaryLocked()
}

func (c *Context) summaryLocked() Summary {
	s := Summary{
		StartedAt:  c.startedAt,
		FinishedAt: c.finishedAt,
		NodeCounts: make(map[NodeStatus]int),
		TotalNodes: len(c.nodeStatus),
	}
	for _, st := range c.nodeStatus {
		s.NodeCounts[st]++
	}
	switch {
	case c.startedAt.IsZero():
	case c.finishedAt.IsZero():
		s.Duration = time.Since(c.startedAt)
	default:
		s.Duration = c.finishedAt.Sub(c.startedAt)
	}
	return s
}

// Start transitions the run from pending to running.
func (c *Context) Start() error {
	return c.transition(StatusRunning, LogInfo, "run started")
}

// Complete transitions the run to completed and records its final output.
func (c *Context) Complete(output any) error {
	c.mu.Lock()
	c.output = output
	c.mu.Unlock()
	return c.transition(StatusCompleted, LogInfo, "run completed")
}

// Fail transitions the run to failed, keeping the first captured error.
func (c *Context) Fail(err error) error {
	msg := "run failed"
	c.mu.Lock()
	if c.failure == "" && err != nil {
		c.failure = err.Error()
	}
	if err != nil {
		msg = "run failed: " + err.Error()
	}
	c.mu.Unlock()
	return c.transition(StatusFailed, LogError, msg)
}

// Pause transitions a running run to paused.
func (c *Context) Pause() error {
	return c.transition(StatusPaused, LogInfo, "run paused")
}

// Resume transitions a paused run back to running.
func (c *Context) Resume() error {
	return c.transition(StatusRunning, LogInfo, "run resumed")
}

// Stop transitions a running or paused run to stopped.
func (c *Context) Stop(reason string) error {
	msg := "run stopped"
	c.mu.Lock()
	c.stopReason = reason
	c.mu.Unlock()
	if reason != "" {
		msg = "run stopped: " + reason
	}
	return c.transition(StatusStopped, LogWarn, msg)
}

// transition applies one status change under the state machine, appends the
// transition log entry, stamps start/finish times, and notifies observers.
func (c *Context) transition(to Status, level LogLevel, message string) error {
	c.mu.Lock()
	from := c.status
	if !canTransition(from, to) {
		c.mu.Unlock()
		if from.Terminal() {
			return fmt.Errorf("run %q is %s: %w", c.runID, from, ErrTerminalStatus)
		}
		return fmt.Errorf("run %q cannot go from %s to %s: %w", c.runID, from, to, ErrInvalidTransition)
	}

	c.status = to
	now := time.Now()
	if to == StatusRunning && c.startedAt.IsZero() {
		c.startedAt = now
	}
	if to.Terminal() {
		c.finishedAt = now
	}

	entry := LogEntry{
		Level:     level,
		Message:   message,
		Metadata:  map[string]any{"from": string(from), "to": string(to)},
		Timestamp: now,
	}
	c.logs = append(c.logs, entry)
	onLog, onStatus := c.onLog, c.onStatus
	c.mu.Unlock()

	if onLog != nil {
		onLog(entry)
	}
	if onStatus != nil {
		onStatus(to)
	}
	return nil
}
