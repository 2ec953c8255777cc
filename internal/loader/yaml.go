package loader

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/flowgrid/internal/workflow"
)

// LoadYAML parses one YAML (or JSON, which YAML subsumes) workflow file.
func LoadYAML(ctx context.Context, path string) (*workflow.Workflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow file: %w", err)
	}

	var wf workflow.Workflow
	if err := yaml.Unmarshal(raw, &wf); err != nil {
		return nil, fmt.Errorf("failed to decode workflow file %s: %w", path, err)
	}

	// yaml.v3 decodes nested mappings as map[string]interface{} already, but
	// numbers arrive as int; normalize to float64 so configs look the same
	// regardless of source format.
	for i := range wf.Nodes {
		wf.Nodes[i].Config = normalizeMap(wf.Nodes[i].Config)
	}
	return &wf, nil
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch tv := v.(type) {
	case int:
		return float64(tv)
	case int64:
		return float64(tv)
	case uint64:
		return float64(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]any:
		return normalizeMap(tv)
	default:
		return v
	}
}
