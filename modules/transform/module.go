// Package transform provides the data-shaping node type: field re-mapping,
// field filtering, multi-source merging and field extraction, all driven by
// declarative configuration resolved through the context's template
// resolver.
package transform

import (
	"context"
	"fmt"

	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/registry"
)

// TypeName is the node type string this module registers.
const TypeName = "transform"

// Supported operations.
const (
	OpMap     = "map"
	OpFilter  = "filter"
	OpMerge   = "merge"
	OpExtract = "extract"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, func() executor.NodeExecutor { return &Executor{} })
}

// Executor applies one declarative transform.
//
// Config by operation:
//
//	map     — mapping: {outKey: value}; values are usually templates such as
//	          "{{nodes.fetch.title}}" and arrive here already resolved
//	filter  — source: context path to an object; fields: names to keep
//	merge   — sources: list of context paths to objects, merged in order
//	          (later sources win on key conflicts)
//	extract — source: context path; the value at that path becomes the output
type Executor struct{}

func (e *Executor) Type() string { return TypeName }

func (e *Executor) ValidateConfig(config map[string]any) error {
	op, ok := executor.ConfigString(config, "operation")
	if !ok || op == "" {
		return executor.NewValidationError(TypeName, "operation", "required")
	}
	switch op {
	case OpMap:
		if _, ok := executor.ConfigMap(config, "mapping"); !ok {
			return executor.NewValidationError(TypeName, "mapping", "required object for map operation")
		}
	case OpFilter:
		if _, ok := executor.ConfigString(config, "source"); !ok {
			return executor.NewValidationError(TypeName, "source", "required for filter operation")
		}
		if _, ok := executor.ConfigSlice(config, "fields"); !ok {
			return executor.NewValidationError(TypeName, "fields", "required list for filter operation")
		}
	case OpMerge:
		sources, ok := executor.ConfigSlice(config, "sources")
		if !ok || len(sources) == 0 {
			return executor.NewValidationError(TypeName, "sources", "required non-empty list for merge operation")
		}
	case OpExtract:
		if _, ok := executor.ConfigString(config, "source"); !ok {
			return executor.NewValidationError(TypeName, "source", "required for extract operation")
		}
	default:
		return executor.NewValidationError(TypeName, "operation", fmt.Sprintf("unsupported operation %q", op))
	}
	return nil
}

func (e *Executor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	op, _ := executor.ConfigString(config, "operation")

	switch op {
	case OpMap:
		mapping, _ := executor.ConfigMap(config, "mapping")
		// Template resolution already replaced placeholder values; the
		// mapping is the output.
		return mapping, nil

	case OpFilter:
		source, _ := executor.ConfigString(config, "source")
		obj, err := lookupObject(ec, source)
		if err != nil {
			return nil, err
		}
		fields, _ := executor.ConfigSlice(config, "fields")
		out := make(map[string]any, len(fields))
		for _, f := range fields {
			name, ok := f.(string)
			if !ok {
				continue
			}
			if v, present := obj[name]; present {
				out[name] = v
			}
		}
		return out, nil

	case OpMerge:
		sources, _ := executor.ConfigSlice(config, "sources")
		out := make(map[string]any)
		for _, s := range sources {
			path, ok := s.(string)
			if !ok {
				return nil, fmt.Errorf("merge source %v is not a path string", s)
			}
			obj, err := lookupObject(ec, path)
			if err != nil {
				return nil, err
			}
			for k, v := range obj {
				out[k] = v
			}
		}
		return out, nil

	case OpExtract:
		source, _ := executor.ConfigString(config, "source")
		value, ok := ec.LookupPath(source)
		if !ok {
			return nil, fmt.Errorf("extract source %q did not resolve", source)
		}
		return value, nil
	}
	return nil, fmt.Errorf("unsupported operation %q", op)
}

func lookupObject(ec *execution.Context, path string) (map[string]any, error) {
	value, ok := ec.LookupPath(path)
	if !ok {
		return nil, fmt.Errorf("source %q did not resolve", path)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("source %q is not an object (got %T)", path, value)
	}
	return obj, nil
}
