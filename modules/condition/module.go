// Package condition provides the branching node type. It evaluates ordered
// {field, operator, value} predicates against context-resolved values and
// selects the first matching branch, falling back to a configured default.
package condition

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/registry"
)

// TypeName is the node type string this module registers.
const TypeName = "condition"

// Operators supported by a predicate.
const (
	OpEquals         = "eq"
	OpNotEquals      = "neq"
	OpGreaterThan    = "gt"
	OpGreaterOrEqual = "gte"
	OpLessThan       = "lt"
	OpLessOrEqual    = "lte"
	OpContains       = "contains"
	OpIn             = "in"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, func() executor.NodeExecutor { return &Executor{} })
}

// Executor selects a branch name.
//
// Config:
//
//	conditions     — list of {field, operator, value, branch} objects; field
//	                 is a context path such as "input.age" or "nodes.x.score"
//	default_branch — branch selected when no predicate matches (required)
//
// Output: {"branch": <name>, "matched": <bool>}.
type Executor struct{}

func (e *Executor) Type() string { return TypeName }

func (e *Executor) ValidateConfig(config map[string]any) error {
	if _, ok := executor.ConfigString(config, "default_branch"); !ok {
		return executor.NewValidationError(TypeName, "default_branch", "required")
	}
	list, ok := executor.ConfigSlice(config, "conditions")
	if !ok {
		return executor.NewValidationError(TypeName, "conditions", "required list")
	}
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return executor.NewValidationError(TypeName, fmt.Sprintf("conditions[%d]", i), "must be an object")
		}
		if f, ok := m["field"].(string); !ok || f == "" {
			return executor.NewValidationError(TypeName, fmt.Sprintf("conditions[%d].field", i), "required")
		}
		op, ok := m["operator"].(string)
		if !ok {
			return executor.NewValidationError(TypeName, fmt.Sprintf("conditions[%d].operator", i), "required")
		}
		if !validOperator(op) {
			return executor.NewValidationError(TypeName, fmt.Sprintf("conditions[%d].operator", i), fmt.Sprintf("unsupported operator %q", op))
		}
		if b, ok := m["branch"].(string); !ok || b == "" {
			return executor.NewValidationError(TypeName, fmt.Sprintf("conditions[%d].branch", i), "required")
		}
	}
	return nil
}

func (e *Executor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	conditions, _ := executor.ConfigSlice(config, "conditions")
	defaultBranch, _ := executor.ConfigString(config, "default_branch")

	for _, item := range conditions {
		m := item.(map[string]any)
		field := m["field"].(string)
		op := m["operator"].(string)
		expected := m["value"]
		branch := m["branch"].(string)

		actual, _ := ec.LookupPath(field)
		matched, err := evaluate(op, actual, expected)
		if err != nil {
			return nil, fmt.Errorf("predicate on %q: %w", field, err)
		}
		if matched {
			return map[string]any{"branch": branch, "matched": true}, nil
		}
	}
	return map[string]any{"branch": defaultBranch, "matched": false}, nil
}

func validOperator(op string) bool {
	switch op {
	case OpEquals, OpNotEquals, OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual, OpContains, OpIn:
		return true
	}
	return false
}

// evaluate applies one predicate. Ordering operators require both sides to
// coerce to numbers; equality falls back to string comparison when types
// differ.
func evaluate(op string, actual, expected any) (bool, error) {
	switch op {
	case OpEquals:
		return equal(actual, expected), nil
	case OpNotEquals:
		return !equal(actual, expected), nil
	case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		a, aok := toNumber(actual)
		b, bok := toNumber(expected)
		if !aok || !bok {
			return false, fmt.Errorf("operator %q needs numeric operands, got %T and %T", op, actual, expected)
		}
		switch op {
		case OpGreaterThan:
			return a > b, nil
		case OpGreaterOrEqual:
			return a >= b, nil
		case OpLessThan:
			return a < b, nil
		default:
			return a <= b, nil
		}
	case OpContains:
		switch av := actual.(type) {
		case string:
			return strings.Contains(av, fmt.Sprintf("%v", expected)), nil
		case []any:
			for _, item := range av {
				if equal(item, expected) {
					return true, nil
				}
			}
			return false, nil
		default:
			return false, fmt.Errorf("operator %q needs a string or list on the left, got %T", op, actual)
		}
	case OpIn:
		set, ok := expected.([]any)
		if !ok {
			return false, fmt.Errorf("operator %q needs a list on the right, got %T", op, expected)
		}
		for _, item := range set {
			if equal(actual, item) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("unsupported operator %q", op)
}

func equal(a, b any) bool {
	if na, ok := toNumber(a); ok {
		if nb, ok := toNumber(b); ok {
			return na == nb
		}
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func toNumber(v any) (float64, bool) {
	switch tv := v.(type) {
	case float64:
		return tv, true
	case float32:
		return float64(tv), true
	case int:
		return float64(tv), true
	case int64:
		return float64(tv), true
	case string:
		f, err := strconv.ParseFloat(tv, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
