package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/app"
	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/loader"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/service"
)

// gateModule registers the "gate" node type: it signals when it starts and
// blocks until released, so tests can exercise a run mid-flight.
type gateModule struct {
	started chan string
	release chan struct{}
}

func newGateModule() *gateModule {
	return &gateModule{
		started: make(chan string, 8),
		release: make(chan struct{}),
	}
}

func (m *gateModule) Register(r *registry.Registry) {
	r.Register("gate", func() executor.NodeExecutor { return &gateExecutor{module: m} })
	r.Register("emit", func() executor.NodeExecutor { return &emitExecutor{} })
}

type gateExecutor struct {
	module *gateModule
}

func (e *gateExecutor) Type() string                               { return "gate" }
func (e *gateExecutor) ValidateConfig(config map[string]any) error { return nil }

func (e *gateExecutor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	id, _ := config["id"].(string)
	e.module.started <- id
	select {
	case <-e.module.release:
		return map[string]any{"id": id}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type emitExecutor struct{}

func (e *emitExecutor) Type() string                               { return "emit" }
func (e *emitExecutor) ValidateConfig(config map[string]any) error { return nil }
func (e *emitExecutor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	return config, nil
}

// startControlledRun loads the workflow, starts it through the service, and
// returns everything a control test needs.
func startControlledRun(t *testing.T, wf string, gate *gateModule) (context.Context, *service.Service, *service.Run) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "main.yaml")
	require.NoError(t, os.WriteFile(path, []byte(wf), 0o644))

	cfg, err := app.NewConfig(app.Config{WorkflowPath: path, LogFormat: "text"})
	require.NoError(t, err)

	testApp, _ := app.SetupAppTest(t, cfg, gate)
	ctx := testApp.RunContext(context.Background())

	parsed, err := loader.Load(ctx, path)
	require.NoError(t, err)

	run, err := testApp.Service().Start(ctx, service.StartRequest{Workflow: parsed})
	require.NoError(t, err)
	return ctx, testApp.Service(), run
}
