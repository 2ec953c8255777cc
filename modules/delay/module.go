// Package delay provides a node type that waits a configured duration. It
// exists mostly for demos and for exercising the scheduler's concurrency in
// tests.
package delay

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/registry"
)

// TypeName is the node type string this module registers.
const TypeName = "delay"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, func() executor.NodeExecutor { return &Executor{} })
}

// Executor sleeps for the configured "duration" (Go duration string),
// honouring context cancellation.
type Executor struct{}

func (e *Executor) Type() string { return TypeName }

func (e *Executor) ValidateConfig(config map[string]any) error {
	raw, ok := executor.ConfigString(config, "duration")
	if !ok || raw == "" {
		return executor.NewValidationError(TypeName, "duration", "required")
	}
	if _, err := time.ParseDuration(raw); err != nil {
		return executor.NewValidationError(TypeName, "duration", err.Error())
	}
	return nil
}

func (e *Executor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	raw, _ := executor.ConfigString(config, "duration")
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing duration: %w", err)
	}

	select {
	case <-time.After(d):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return map[string]any{"slept": raw}, nil
}
