package print

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/execution"
)

func TestExecute_LogsAndPassesThrough(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, nil))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	ec := execution.NewContext("run-1", nil)
	e := &Executor{}

	value := map[string]any{"b": float64(2), "a": "one"}
	out, err := e.Execute(ctx, map[string]any{"value": value}, ec)
	require.NoError(t, err)
	assert.Equal(t, value, out)

	logText := sb.String()
	assert.Contains(t, logText, "key=a")
	assert.Contains(t, logText, "key=b")
	// Keys log in sorted order.
	assert.Less(t, strings.Index(logText, "key=a"), strings.Index(logText, "key=b"))
}

func TestExecute_NoValue(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	ec := execution.NewContext("run-1", nil)
	e := &Executor{}

	out, err := e.Execute(ctx, map[string]any{}, ec)
	require.NoError(t, err)
	assert.Nil(t, out)
}
