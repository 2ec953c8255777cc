// Package registry maps node type names to executor factories. Node "type"
// strings in a workflow definition dispatch through this table; there is no
// reflection involved, just a string-keyed lookup resolved once per node
// before execution.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/flowgrid/internal/executor"
)

// ErrUnknownNodeType indicates a workflow referenced a node type no module
// has registered.
var ErrUnknownNodeType = errors.New("unknown node type")

// Factory constructs a fresh executor instance for one node.
type Factory func() executor.NodeExecutor

// Module is implemented by every package that contributes node types.
type Module interface {
	Register(r *Registry)
}

// Registry holds the node type table for a single application instance.
type Registry struct {
	factories map[string]Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a node type. Registering the same type twice is a programmer
// error and panics.
func (r *Registry) Register(typeName string, factory Factory) {
	if _, exists := r.factories[typeName]; exists {
		panic(fmt.Sprintf("node type %q already registered", typeName))
	}
	slog.Debug("Registering node type.", "type", typeName)
	r.factories[typeName] = factory
}

// Resolve returns the factory for a node type.
func (r *Registry) Resolve(typeName string) (Factory, error) {
	f, ok := r.factories[typeName]
	if !ok {
		return nil, fmt.Errorf("%q: %w", typeName, ErrUnknownNodeType)
	}
	return f, nil
}

// Types returns every registered type name, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for name := range r.factories {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
