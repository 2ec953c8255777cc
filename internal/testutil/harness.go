// Package testutil provides the shared harness and mock node modules used by
// the system test suites under internal/test/system.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/app"
	"github.com/vk/flowgrid/internal/engine"
	"github.com/vk/flowgrid/internal/loader"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/service"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a system test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	Outcome   engine.Outcome
	Run       *service.Run
	App       *app.App
}

// RunWorkflowTest writes the given workflow file to a temp dir, builds an app
// around the provided modules (built-ins when none are given), runs the
// workflow to a terminal status and returns everything a test needs to
// assert on. Load failures surface in HarnessResult.Err with a nil Run.
func RunWorkflowTest(t *testing.T, filename, content string, input map[string]any, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunWorkflowTestWithContext(context.Background(), t, filename, content, input, modules...)
}

// RunWorkflowTestWithContext is RunWorkflowTest with a caller-supplied
// context bounding the run.
func RunWorkflowTestWithContext(ctx context.Context, t *testing.T, filename, content string, input map[string]any, modules ...registry.Module) *HarnessResult {
	t.Helper()

	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := app.NewConfig(app.Config{
		WorkflowPath: path,
		LogFormat:    "text",
	})
	require.NoError(t, err)

	testApp, logBuffer := app.SetupAppTest(t, cfg, modules...)
	result := &HarnessResult{App: testApp}

	runCtx := testApp.RunContext(ctx)
	wf, err := loader.Load(runCtx, path)
	if err != nil {
		result.Err = err
		result.LogOutput = logBuffer.String()
		return result
	}

	run, err := testApp.Service().Start(runCtx, service.StartRequest{Workflow: wf, Input: input})
	require.NoError(t, err)
	result.Run = run

	outcome, err := testApp.Service().Wait(runCtx, run.ID)
	require.NoError(t, err)
	result.Outcome = outcome
	result.Err = outcome.Err
	result.LogOutput = logBuffer.String()
	return result
}
