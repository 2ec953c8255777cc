package inference

import (
	"context"
	"sync"
)

// Mock is a scriptable Client for tests. Zero value echoes the prompt.
type Mock struct {
	// Response, when set, is returned by Generate.
	Response string
	// Chunks, when set, are streamed by GenerateStream.
	Chunks []string
	// Err fails both calls when set.
	Err error

	mu       sync.Mutex
	requests []Request
}

// Generate implements Client.
func (m *Mock) Generate(ctx context.Context, req Request) (string, error) {
	m.record(req)
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return "echo: " + req.Prompt, nil
}

// GenerateStream implements Client.
func (m *Mock) GenerateStream(ctx context.Context, req Request) (<-chan Chunk, error) {
	m.record(req)
	if m.Err != nil {
		return nil, m.Err
	}
	chunks := m.Chunks
	if len(chunks) == 0 {
		chunks = []string{"echo: ", req.Prompt}
	}
	out := make(chan Chunk, len(chunks))
	for _, c := range chunks {
		out <- Chunk{Text: c}
	}
	close(out)
	return out, nil
}

// Requests returns every request seen so far.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

func (m *Mock) record(req Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
}
