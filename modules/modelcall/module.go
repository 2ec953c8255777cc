// Package modelcall provides the node type that delegates to the external
// text-generation service. The prompt is a template resolved against the run
// context before the call; streamed responses are buffered until complete
// and recorded as one output.
package modelcall

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/inference"
	"github.com/vk/flowgrid/internal/registry"
)

// TypeName is the node type string this module registers.
const TypeName = "model_call"

// Module implements the registry.Module interface for this package. The
// inference client is injected so tests run against a mock.
type Module struct {
	Client inference.Client
}

// Register registers the node type with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, func() executor.NodeExecutor { return &Executor{client: m.Client} })
}

// Executor calls the inference collaborator.
//
// Config:
//
//	model         — model identifier (required)
//	prompt        — prompt template (required); placeholders resolve against
//	                the run context before the call
//	system_prompt — optional system prompt
//	temperature   — optional float
//	max_tokens    — optional int
//	streaming     — optional bool; buffers chunks until the stream completes
//
// Output: {"text": <response>, "model": <model>}.
type Executor struct {
	client inference.Client
}

func (e *Executor) Type() string { return TypeName }

func (e *Executor) ValidateConfig(config map[string]any) error {
	if model, ok := executor.ConfigString(config, "model"); !ok || model == "" {
		return executor.NewValidationError(TypeName, "model", "required")
	}
	if _, ok := config["prompt"]; !ok {
		return executor.NewValidationError(TypeName, "prompt", "required")
	}
	return nil
}

func (e *Executor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	if e.client == nil {
		return nil, fmt.Errorf("no inference client configured for %s nodes", TypeName)
	}

	model, _ := executor.ConfigString(config, "model")
	prompt := fmt.Sprintf("%v", config["prompt"])

	req := inference.Request{
		Model:  model,
		Prompt: prompt,
	}
	if sys, ok := executor.ConfigString(config, "system_prompt"); ok {
		req.Options.SystemPrompt = sys
	}
	if temp, ok := config["temperature"].(float64); ok {
		req.Options.Temperature = float32(temp)
	}
	if maxTokens, ok := config["max_tokens"].(float64); ok {
		req.Options.MaxTokens = int(maxTokens)
	}

	streaming, _ := executor.ConfigBool(config, "streaming")
	logger := ctxlog.FromContext(ctx).With("model", model, "streaming", streaming)
	logger.Debug("Calling inference service.")

	var text string
	if streaming {
		stream, err := e.client.GenerateStream(ctx, req)
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		for chunk := range stream {
			if chunk.Err != nil {
				return nil, chunk.Err
			}
			sb.WriteString(chunk.Text)
		}
		text = sb.String()
	} else {
		var err error
		text, err = e.client.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Inference call finished.", "response_chars", len(text))
	return map[string]any{"text": text, "model": model}, nil
}
