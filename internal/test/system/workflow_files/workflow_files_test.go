package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/app"
	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/testutil"
)

// Test for: an HCL workflow file drives a full run through the app with the
// built-in node types.
func TestWorkflowFiles_HCLEndToEnd(t *testing.T) {
	// --- Arrange ---
	wf := `
workflow "greeting" {
  node "in" {
    type = "input"
    config {
      fields = [
        { name = "who", default = "world" },
      ]
    }
  }

  node "shape" {
    type = "transform"
    config {
      operation = "map"
      mapping = {
        greeting = "hello {{nodes.in.who}}"
      }
    }
  }

  node "out" {
    type = "output"
    config {
      source = "shape"
    }
  }

  edge "e1" {
    source = "in"
    target = "shape"
  }

  edge "e2" {
    source = "shape"
    target = "out"
  }
}
`

	// --- Act ---
	result := testutil.RunWorkflowTest(t, "main.hcl", wf, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, execution.StatusCompleted, result.Outcome.Status)
	assert.Equal(t, map[string]any{"greeting": "hello world"}, result.Outcome.Output)
}

// Test for: a YAML workflow file producing the same run through App.Run,
// including the printed final output.
func TestWorkflowFiles_YAMLThroughAppRun(t *testing.T) {
	// --- Arrange ---
	wf := `
name: branching
nodes:
  - id: in
    type: input
  - id: route
    type: condition
    config:
      conditions:
        - {field: input.age, operator: gte, value: 18, branch: adult}
      default_branch: minor
  - id: out
    type: output
    config:
      source: route
edges:
  - {id: e1, source: in, target: route}
  - {id: e2, source: route, target: out}
`
	path := filepath.Join(t.TempDir(), "main.yaml")
	require.NoError(t, os.WriteFile(path, []byte(wf), 0o644))

	cfg, err := app.NewConfig(app.Config{
		WorkflowPath: path,
		InputJSON:    `{"age": 12}`,
		LogFormat:    "text",
		LogLevel:     "error",
	})
	require.NoError(t, err)

	out := &testutil.SafeBuffer{}
	testApp := app.NewApp(out, cfg)

	// --- Act ---
	runErr := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, runErr)
	assert.Contains(t, out.String(), `"branch": "minor"`)
	assert.Contains(t, out.String(), `"matched": false`)
}
