package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client against an OpenAI-compatible chat
// completion endpoint.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient builds a client for the given API key. baseURL overrides
// the endpoint for compatible providers; empty keeps the default.
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

// Generate performs one blocking chat completion.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, chatRequest(req, false))
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %q returned no choices", req.Model)
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream starts a streamed chat completion. Chunks arrive on the
// returned channel until the stream ends or fails.
func (c *OpenAIClient) GenerateStream(ctx context.Context, req Request) (<-chan Chunk, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, chatRequest(req, true))
	if err != nil {
		return nil, classify(err)
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				out <- Chunk{Err: classify(err)}
				return
			}
			if len(resp.Choices) > 0 {
				out <- Chunk{Text: resp.Choices[0].Delta.Content}
			}
		}
	}()
	return out, nil
}

func chatRequest(req Request, stream bool) openai.ChatCompletionRequest {
	messages := []openai.ChatCompletionMessage{}
	if req.Options.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Options.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
	return openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Options.Temperature,
		MaxTokens:   req.Options.MaxTokens,
		Stream:      stream,
	}
}

// classify maps provider errors onto the package taxonomy while keeping the
// original message intact.
func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 404 || strings.Contains(fmt.Sprintf("%v", apiErr.Code), "model_not_found") {
			return fmt.Errorf("%w: %v", ErrModelNotFound, err)
		}
		return err
	}

	if strings.Contains(err.Error(), "connection refused") {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return err
}
