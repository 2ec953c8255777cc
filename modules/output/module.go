// Package output provides the terminal node type. It projects, filters and
// formats a source node's output into the run's final output.
package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/registry"
)

// TypeName is the node type string this module registers.
const TypeName = "output"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, func() executor.NodeExecutor { return &Executor{} })
}

// Executor projects a source node's output.
//
// Config:
//
//	source  — id of the node whose output to project (required)
//	fields  — optional list of top-level fields to keep
//	format  — optional "json" to render the result as a JSON string
type Executor struct{}

func (e *Executor) Type() string { return TypeName }

func (e *Executor) ValidateConfig(config map[string]any) error {
	src, ok := executor.ConfigString(config, "source")
	if !ok || src == "" {
		return executor.NewValidationError(TypeName, "source", "required")
	}
	if _, present := config["fields"]; present {
		if _, ok := executor.ConfigSlice(config, "fields"); !ok {
			return executor.NewValidationError(TypeName, "fields", "must be a list of field names")
		}
	}
	if format, present := executor.ConfigString(config, "format"); present && format != "json" && format != "raw" {
		return executor.NewValidationError(TypeName, "format", `must be "json" or "raw"`)
	}
	return nil
}

func (e *Executor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	source, _ := executor.ConfigString(config, "source")

	value, ok := ec.LookupPath("nodes." + source)
	if !ok {
		return nil, fmt.Errorf("source node %q has no recorded output", source)
	}

	if fields, ok := executor.ConfigSlice(config, "fields"); ok {
		m, isMap := value.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("source node %q output is not an object, cannot project fields", source)
		}
		projected := make(map[string]any, len(fields))
		for _, f := range fields {
			name, ok := f.(string)
			if !ok {
				continue
			}
			if v, present := m[name]; present {
				projected[name] = v
			}
		}
		value = projected
	}

	if format, _ := executor.ConfigString(config, "format"); format == "json" {
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("formatting output as JSON: %w", err)
		}
		return string(b), nil
	}
	return value, nil
}
