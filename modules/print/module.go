// Package print provides a node type that logs its resolved input. The
// workflow equivalent of a debug statement.
package print

import (
	"context"
	"sort"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/registry"
)

// TypeName is the node type string this module registers.
const TypeName = "print"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, func() executor.NodeExecutor { return &Executor{} })
}

// Executor logs the resolved "value" object field by field and passes it
// through as its output.
type Executor struct{}

func (e *Executor) Type() string { return TypeName }

func (e *Executor) ValidateConfig(config map[string]any) error {
	return nil
}

func (e *Executor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	logger := ctxlog.FromContext(ctx)

	value, ok := executor.ConfigMap(config, "value")
	if !ok {
		logger.Info("print: (no value)")
		return nil, nil
	}

	// Sort keys for consistent output.
	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		logger.Info("print:", "key", k, "value", value[k])
	}
	return value, nil
}
