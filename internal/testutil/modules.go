package testutil

import (
	"context"
	"errors"

	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/registry"
)

// MockEmitModule registers the "emit" node type, which succeeds with its
// resolved config as output. The workhorse of data-passing tests.
type MockEmitModule struct{}

func (m *MockEmitModule) Register(r *registry.Registry) {
	r.Register("emit", func() executor.NodeExecutor { return &emitExecutor{} })
}

type emitExecutor struct{}

func (e *emitExecutor) Type() string                               { return "emit" }
func (e *emitExecutor) ValidateConfig(config map[string]any) error { return nil }
func (e *emitExecutor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	return config, nil
}

// MockFailModule registers the "fail" node type, which always errors with
// the configured message.
type MockFailModule struct{}

func (m *MockFailModule) Register(r *registry.Registry) {
	r.Register("fail", func() executor.NodeExecutor { return &failExecutor{} })
}

type failExecutor struct{}

func (e *failExecutor) Type() string                               { return "fail" }
func (e *failExecutor) ValidateConfig(config map[string]any) error { return nil }
func (e *failExecutor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	msg, _ := config["message"].(string)
	if msg == "" {
		msg = "intentional failure"
	}
	return nil, errors.New(msg)
}
