// Package inference is the narrow interface to the external text-generation
// service. The engine owns none of its internals; the model-call node type
// maps every failure here into a failed node result with the service's
// message preserved verbatim for diagnostics.
package inference

import (
	"context"
	"errors"
)

var (
	// ErrConnection indicates the service could not be reached.
	ErrConnection = errors.New("inference service unreachable")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")
)

// Options tune a single generation request.
type Options struct {
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Temperature  float32 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}

// Request is one generation call.
type Request struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Options Options `json:"options"`
}

// Chunk is one piece of a streamed response. Err, when set, terminates the
// stream; the channel is closed afterwards.
type Chunk struct {
	Text string
	Err  error
}

// Client generates text from a prompt, in one shot or as a stream of
// chunks. Implementations keep their own retry and connection-pool policy.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
	GenerateStream(ctx context.Context, req Request) (<-chan Chunk, error)
}
