package loader

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/workflow"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const hclWorkflow = `
workflow "doubling" {
  node "in" {
    type = "input"
  }

  node "double" {
    type = "transform"
    config {
      operation = "map"
      mapping = {
        value = "{{input.x}}"
      }
      attempts = 3
      tags     = ["math", "demo"]
      verbose  = true
    }
  }

  node "out" {
    type = "output"
    config {
      source = "double"
    }
  }

  edge "e1" {
    source = "in"
    target = "double"
  }

  edge "e2" {
    source = "double"
    target = "out"
  }
}
`

func TestLoadHCL(t *testing.T) {
	path := writeFile(t, "doubling.hcl", hclWorkflow)

	wf, err := Load(testContext(t), path)
	require.NoError(t, err)

	want := &workflow.Workflow{
		Name: "doubling",
		Nodes: []workflow.Node{
			{ID: "in", Type: "input", Config: map[string]any{}},
			{ID: "double", Type: "transform", Config: map[string]any{
				"operation": "map",
				"mapping":   map[string]any{"value": "{{input.x}}"},
				"attempts":  float64(3),
				"tags":      []any{"math", "demo"},
				"verbose":   true,
			}},
			{ID: "out", Type: "output", Config: map[string]any{"source": "double"}},
		},
		Edges: []workflow.Edge{
			{ID: "e1", Source: "in", Target: "double"},
			{ID: "e2", Source: "double", Target: "out"},
		},
	}
	if diff := cmp.Diff(want, wf); diff != "" {
		t.Errorf("workflow mismatch (-want +got):\n%s", diff)
	}
}

const yamlWorkflow = `
name: doubling
nodes:
  - id: in
    type: input
  - id: double
    type: transform
    config:
      operation: map
      mapping:
        value: "{{input.x}}"
      attempts: 3
      verbose: true
  - id: out
    type: output
    config:
      source: double
edges:
  - id: e1
    source: in
    target: double
  - id: e2
    source: double
    target: out
`

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "doubling.yaml", yamlWorkflow)

	wf, err := Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, "doubling", wf.Name)
	require.Len(t, wf.Nodes, 3)
	require.Len(t, wf.Edges, 2)

	double := wf.Nodes[1]
	assert.Equal(t, "transform", double.Type)
	// Numbers normalize to float64 so configs match HCL-sourced ones.
	assert.Equal(t, float64(3), double.Config["attempts"])
	assert.Equal(t, map[string]any{"value": "{{input.x}}"}, double.Config["mapping"])
	assert.Equal(t, true, double.Config["verbose"])
}

func TestLoad_FormatsAgree(t *testing.T) {
	hclPath := writeFile(t, "wf.hcl", hclWorkflow)
	yamlPath := writeFile(t, "wf.yaml", yamlWorkflow)

	fromHCL, err := Load(testContext(t), hclPath)
	require.NoError(t, err)
	fromYAML, err := Load(testContext(t), yamlPath)
	require.NoError(t, err)

	// The HCL fixture carries one extra list attribute; ignore it.
	delete(fromHCL.Nodes[1].Config, "tags")
	if diff := cmp.Diff(fromHCL, fromYAML); diff != "" {
		t.Errorf("formats disagree (-hcl +yaml):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := testContext(t)

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "wf.toml", "")
		_, err := Load(ctx, path)
		assert.ErrorContains(t, err, "unsupported workflow file extension")
	})

	t.Run("hcl parse failure", func(t *testing.T) {
		path := writeFile(t, "broken.hcl", `workflow "x" {`)
		_, err := Load(ctx, path)
		assert.ErrorContains(t, err, "failed to parse")
	})

	t.Run("multiple workflow blocks", func(t *testing.T) {
		path := writeFile(t, "two.hcl", `
workflow "a" {
  node "n" { type = "input" }
}
workflow "b" {
  node "n" { type = "input" }
}
`)
		_, err := Load(ctx, path)
		assert.ErrorContains(t, err, "exactly one workflow block")
	})

	t.Run("yaml decode failure", func(t *testing.T) {
		path := writeFile(t, "broken.yaml", "nodes: {not: [a, list}")
		_, err := Load(ctx, path)
		assert.ErrorContains(t, err, "failed to decode")
	})

	t.Run("model validation failure", func(t *testing.T) {
		path := writeFile(t, "dupe.yaml", `
name: dupe
nodes:
  - id: n
    type: input
  - id: n
    type: input
`)
		_, err := Load(ctx, path)
		assert.ErrorIs(t, err, workflow.ErrDuplicateNodeID)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
