package output

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/execution"
)

func TestExecute_ProjectsSource(t *testing.T) {
	ec := execution.NewContext("run-1", nil)
	require.NoError(t, ec.SetNodeOutput("calc", map[string]any{
		"result": float64(10),
		"debug":  "trace",
	}))
	e := &Executor{}

	t.Run("whole output", func(t *testing.T) {
		out, err := e.Execute(context.Background(), map[string]any{"source": "calc"}, ec)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"result": float64(10), "debug": "trace"}, out)
	})

	t.Run("selected fields", func(t *testing.T) {
		out, err := e.Execute(context.Background(), map[string]any{
			"source": "calc",
			"fields": []any{"result"},
		}, ec)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"result": float64(10)}, out)
	})

	t.Run("json format", func(t *testing.T) {
		out, err := e.Execute(context.Background(), map[string]any{
			"source": "calc",
			"fields": []any{"result"},
			"format": "json",
		}, ec)
		require.NoError(t, err)
		assert.Equal(t, `{"result":10}`, out)
	})
}

func TestExecute_UnknownSource(t *testing.T) {
	ec := execution.NewContext("run-1", nil)
	e := &Executor{}

	_, err := e.Execute(context.Background(), map[string]any{"source": "ghost"}, ec)
	assert.ErrorContains(t, err, "no recorded output")
}

func TestValidateConfig(t *testing.T) {
	e := &Executor{}

	assert.ErrorContains(t, e.ValidateConfig(map[string]any{}), "source")
	assert.ErrorContains(t, e.ValidateConfig(map[string]any{"source": "x", "format": "xml"}), "format")
	assert.NoError(t, e.ValidateConfig(map[string]any{"source": "x", "format": "raw"}))
}
