// Package loader reads workflow definitions from disk. Two formats are
// supported: HCL for hand-written workflows and YAML/JSON for machine-built
// ones. Both produce the same workflow model; the format is picked by file
// extension.
package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/workflow"
)

// Load parses one workflow file, dispatching on its extension.
func Load(ctx context.Context, path string) (*workflow.Workflow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading workflow file.", "path", path)

	var (
		wf  *workflow.Workflow
		err error
	)
	switch ext := filepath.Ext(path); ext {
	case ".hcl":
		wf, err = LoadHCL(ctx, path)
	case ".yaml", ".yml", ".json":
		wf, err = LoadYAML(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported workflow file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := wf.Validate(); err != nil {
		return nil, fmt.Errorf("workflow file %s: %w", path, err)
	}
	logger.Debug("Workflow file loaded.", "workflow", wf.Name, "nodes", len(wf.Nodes), "edges", len(wf.Edges))
	return wf, nil
}
