package modelcall

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/inference"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestExecute_Generate(t *testing.T) {
	mock := &inference.Mock{Response: "A poem."}
	ec := execution.NewContext("run-1", map[string]any{"topic": "rivers"})
	e := &Executor{client: mock}

	config := ec.ResolveConfig(map[string]any{
		"model":         "gpt-4o-mini",
		"prompt":        "Write about {{input.topic}}.",
		"system_prompt": "Be brief.",
		"temperature":   0.2,
		"max_tokens":    float64(64),
	})
	out, err := e.Execute(testContext(t), config, ec)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "A poem.", "model": "gpt-4o-mini"}, out)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Write about rivers.", reqs[0].Prompt)
	assert.Equal(t, "Be brief.", reqs[0].Options.SystemPrompt)
	assert.Equal(t, float32(0.2), reqs[0].Options.Temperature)
	assert.Equal(t, 64, reqs[0].Options.MaxTokens)
}

func TestExecute_StreamingBuffersChunks(t *testing.T) {
	mock := &inference.Mock{Chunks: []string{"Hello", ", ", "world"}}
	ec := execution.NewContext("run-1", nil)
	e := &Executor{client: mock}

	out, err := e.Execute(testContext(t), map[string]any{
		"model":     "gpt-4o-mini",
		"prompt":    "hi",
		"streaming": true,
	}, ec)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", out.(map[string]any)["text"])
}

func TestExecute_ClientErrorsPropagate(t *testing.T) {
	mock := &inference.Mock{Err: inference.ErrConnection}
	ec := execution.NewContext("run-1", nil)
	e := &Executor{client: mock}

	_, err := e.Execute(testContext(t), map[string]any{
		"model":  "gpt-4o-mini",
		"prompt": "hi",
	}, ec)
	assert.ErrorIs(t, err, inference.ErrConnection)
}

func TestExecute_NoClientConfigured(t *testing.T) {
	ec := execution.NewContext("run-1", nil)
	e := &Executor{}

	_, err := e.Execute(testContext(t), map[string]any{
		"model":  "gpt-4o-mini",
		"prompt": "hi",
	}, ec)
	assert.ErrorContains(t, err, "no inference client")
}

func TestExecute_StreamChunkError(t *testing.T) {
	ec := execution.NewContext("run-1", nil)
	e := &Executor{client: &errAfterFirstChunk{}}

	_, err := e.Execute(testContext(t), map[string]any{
		"model":     "gpt-4o-mini",
		"prompt":    "hi",
		"streaming": true,
	}, ec)
	assert.ErrorContains(t, err, "stream cut short")
}

type errAfterFirstChunk struct{}

func (c *errAfterFirstChunk) Generate(ctx context.Context, req inference.Request) (string, error) {
	return "", errors.New("unexpected Generate call")
}

func (c *errAfterFirstChunk) GenerateStream(ctx context.Context, req inference.Request) (<-chan inference.Chunk, error) {
	out := make(chan inference.Chunk, 2)
	out <- inference.Chunk{Text: "partial"}
	out <- inference.Chunk{Err: errors.New("stream cut short")}
	close(out)
	return out, nil
}

func TestValidateConfig(t *testing.T) {
	e := &Executor{}

	assert.ErrorContains(t, e.ValidateConfig(map[string]any{"prompt": "hi"}), "model")
	assert.ErrorContains(t, e.ValidateConfig(map[string]any{"model": "m"}), "prompt")
	assert.NoError(t, e.ValidateConfig(map[string]any{"model": "m", "prompt": "hi"}))
}
