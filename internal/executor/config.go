package executor

import "fmt"

// ValidationError reports a missing or malformed field in a node's
// configuration. It is treated as a node failure, not an engine crash.
type ValidationError struct {
	NodeType string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s node config field %q: %s", e.NodeType, e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(nodeType, field, reason string) *ValidationError {
	return &ValidationError{NodeType: nodeType, Field: field, Reason: reason}
}

// ConfigString extracts a string field from a node configuration.
func ConfigString(config map[string]any, key string) (string, bool) {
	v, ok := config[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ConfigMap extracts a nested mapping field from a node configuration.
func ConfigMap(config map[string]any, key string) (map[string]any, bool) {
	v, ok := config[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// ConfigSlice extracts a list field from a node configuration.
func ConfigSlice(config map[string]any, key string) ([]any, bool) {
	v, ok := config[key]
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// ConfigBool extracts a boolean field from a node configuration.
func ConfigBool(config map[string]any, key string) (bool, bool) {
	v, ok := config[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
