package execution

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVariables(t *testing.T) {
	c := NewContext("run-1", map[string]any{
		"x":    float64(5),
		"name": "ada",
		"user": map[string]any{"age": float64(30)},
	})
	require.NoError(t, c.SetNodeOutput("fetch", map[string]any{
		"body": map[string]any{"title": "hello"},
		"tags": []any{"a", "b"},
	}))
	c.SetVariable("greeting", "hi")

	t.Run("no placeholders returns text unchanged", func(t *testing.T) {
		assert.Equal(t, "plain text", c.ResolveVariables("plain text"))
	})

	t.Run("input field", func(t *testing.T) {
		assert.Equal(t, "x is 5", c.ResolveVariables("x is {{input.x}}"))
		assert.Equal(t, "ada", c.ResolveVariables("{{input.name}}"))
	})

	t.Run("nested input path", func(t *testing.T) {
		assert.Equal(t, "30", c.ResolveVariables("{{input.user.age}}"))
	})

	t.Run("node output dotted path", func(t *testing.T) {
		assert.Equal(t, "hello", c.ResolveVariables("{{nodes.fetch.body.title}}"))
	})

	t.Run("slice index in path", func(t *testing.T) {
		assert.Equal(t, "b", c.ResolveVariables("{{nodes.fetch.tags.1}}"))
	})

	t.Run("variable", func(t *testing.T) {
		assert.Equal(t, "hi ada", c.ResolveVariables("{{variables.greeting}} {{input.name}}"))
	})

	t.Run("whitespace inside braces", func(t *testing.T) {
		assert.Equal(t, "ada", c.ResolveVariables("{{ input.name }}"))
	})

	t.Run("composite values render as JSON", func(t *testing.T) {
		assert.Equal(t, `["a","b"]`, c.ResolveVariables("{{nodes.fetch.tags}}"))
	})

	t.Run("unresolved placeholder becomes empty string", func(t *testing.T) {
		assert.Equal(t, "value: ", c.ResolveVariables("value: {{input.missing}}"))
		assert.Equal(t, "", c.ResolveVariables("{{nodes.ghost.field}}"))
		assert.Equal(t, "", c.ResolveVariables("{{bogusroot.x}}"))
	})

	t.Run("unresolved placeholder is logged", func(t *testing.T) {
		cc := NewContext("run-2", nil)
		_ = cc.ResolveVariables("{{input.nope}}")
		logs := cc.Logs()
		require.Len(t, logs, 1)
		assert.Equal(t, LogWarn, logs[0].Level)
		assert.Contains(t, logs[0].Message, "input.nope")
	})

	t.Run("resolution is idempotent without state changes", func(t *testing.T) {
		first := c.ResolveVariables("{{input.x}}-{{variables.greeting}}")
		second := c.ResolveVariables("{{input.x}}-{{variables.greeting}}")
		assert.Equal(t, first, second)
	})
}

func TestResolveConfig(t *testing.T) {
	c := NewContext("run-1", map[string]any{"x": float64(5)})
	require.NoError(t, c.SetNodeOutput("a", map[string]any{"nums": []any{float64(1), float64(2)}}))

	config := map[string]any{
		"typed":   "{{input.x}}",
		"inline":  "value is {{input.x}}",
		"object":  "{{nodes.a}}",
		"nested":  map[string]any{"inner": "{{input.x}}"},
		"list":    []any{"{{input.x}}", "static"},
		"static":  true,
		"missing": "{{variables.nope}}",
	}

	got := c.ResolveConfig(config)
	want := map[string]any{
		"typed":   float64(5),
		"inline":  "value is 5",
		"object":  map[string]any{"nums": []any{float64(1), float64(2)}},
		"nested":  map[string]any{"inner": float64(5)},
		"list":    []any{float64(5), "static"},
		"static":  true,
		"missing": "",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ResolveConfig mismatch (-want +got):\n%s", diff)
	}

	// Source config is untouched.
	assert.Equal(t, "{{input.x}}", config["typed"])
}

func TestLookupPath(t *testing.T) {
	c := NewContext("run-1", map[string]any{"x": float64(5)})
	require.NoError(t, c.SetNodeOutput("a", "raw"))
	c.SetVariable("m", map[string]any{"k": "v"})

	v, ok := c.LookupPath("nodes.a")
	require.True(t, ok)
	assert.Equal(t, "raw", v)

	v, ok = c.LookupPath("variables.m.k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = c.LookupPath("nodes")
	assert.False(t, ok)

	_, ok = c.LookupPath("input.x.deeper")
	assert.False(t, ok)
}
