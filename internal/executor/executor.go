// Package executor defines the contract every node type implements and the
// template method that shields the engine from executor failure modes:
// validation errors, returned errors, and panics all become a failed Result
// with an error-level log entry, never a crashed run.
package executor

import (
	"context"
	"fmt"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/execution"
)

// ResultStatus is the outcome classification of one node execution.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultFailure ResultStatus = "failure"
)

// Result is what one node execution produced, consumed by the engine to
// update the run context.
type Result struct {
	NodeID string       `json:"node_id"`
	Status ResultStatus `json:"status"`
	Output any          `json:"output,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// NodeExecutor is the capability backing one node type.
//
// ValidateConfig is called with the raw (unresolved) configuration before
// execution. Execute receives the configuration with templated fields
// already resolved against the run context, and returns the node's output.
// Executors read and write shared run state only through the context's
// synchronized methods.
type NodeExecutor interface {
	Type() string
	ValidateConfig(config map[string]any) error
	Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error)
}

// Run executes one node through the template method. It validates the
// configuration, resolves templated fields, runs the executor with panic
// recovery, and converts any failure into a failed Result plus an error log
// entry. Executors never need their own top-level error handling.
func Run(ctx context.Context, nodeID string, exec NodeExecutor, config map[string]any, ec *execution.Context) *Result {
	logger := ctxlog.FromContext(ctx).With("node_id", nodeID, "node_type", exec.Type())

	if err := exec.ValidateConfig(config); err != nil {
		logger.Error("Node configuration invalid.", "error", err)
		ec.AddLog(execution.LogError, fmt.Sprintf("configuration invalid: %v", err), nodeID, nil)
		return &Result{NodeID: nodeID, Status: ResultFailure, Error: err.Error()}
	}

	resolved := ec.ResolveConfig(config)

	output, err := runRecovered(ctx, exec, resolved, ec)
	if err != nil {
		logger.Error("Node execution failed.", "error", err)
		ec.AddLog(execution.LogError, err.Error(), nodeID, nil)
		return &Result{NodeID: nodeID, Status: ResultFailure, Error: err.Error()}
	}

	logger.Debug("Node execution succeeded.")
	return &Result{NodeID: nodeID, Status: ResultSuccess, Output: output}
}

// runRecovered invokes the executor, converting a panic into an error so a
// misbehaving node type cannot take down the engine.
func runRecovered(ctx context.Context, exec NodeExecutor, config map[string]any, ec *execution.Context) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor %q panicked: %v", exec.Type(), r)
		}
	}()
	return exec.Execute(ctx, config, ec)
}
