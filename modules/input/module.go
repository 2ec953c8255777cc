// Package input provides the entry node type. It seeds the data flow by
// projecting the run's initial payload into its own node output, optionally
// validating declared fields and applying defaults for missing ones.
package input

import (
	"context"
	"fmt"

	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/registry"
)

// TypeName is the node type string this module registers.
const TypeName = "input"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, func() executor.NodeExecutor { return &Executor{} })
}

// fieldSpec is one declared input field.
//
//	{"name": "x", "required": true}
//	{"name": "limit", "default": 10}
type fieldSpec struct {
	name     string
	required bool
	def      any
	hasDef   bool
}

// Executor seeds node output from the run input.
type Executor struct{}

func (e *Executor) Type() string { return TypeName }

// ValidateConfig accepts an empty config (the whole payload passes through)
// or a "fields" list of field specs.
func (e *Executor) ValidateConfig(config map[string]any) error {
	if _, ok := config["fields"]; !ok {
		return nil
	}
	_, err := parseFields(config)
	return err
}

func (e *Executor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	in := ec.Input()

	specs, err := parseFields(config)
	if err != nil {
		return nil, err
	}
	if specs == nil {
		// No declared shape: pass the payload through untouched.
		out := make(map[string]any, len(in))
		for k, v := range in {
			out[k] = v
		}
		return out, nil
	}

	out := make(map[string]any, len(specs))
	for _, spec := range specs {
		if v, ok := in[spec.name]; ok {
			out[spec.name] = v
			continue
		}
		if spec.hasDef {
			out[spec.name] = spec.def
			continue
		}
		if spec.required {
			return nil, fmt.Errorf("required input field %q is missing", spec.name)
		}
	}
	return out, nil
}

func parseFields(config map[string]any) ([]fieldSpec, error) {
	raw, ok := config["fields"]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, executor.NewValidationError(TypeName, "fields", "must be a list of field specs")
	}
	specs := make([]fieldSpec, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, executor.NewValidationError(TypeName, fmt.Sprintf("fields[%d]", i), "must be an object")
		}
		name, ok := m["name"].(string)
		if !ok || name == "" {
			return nil, executor.NewValidationError(TypeName, fmt.Sprintf("fields[%d].name", i), "required")
		}
		spec := fieldSpec{name: name}
		if req, ok := m["required"].(bool); ok {
			spec.required = req
		}
		if def, ok := m["default"]; ok {
			spec.def = def
			spec.hasDef = true
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
