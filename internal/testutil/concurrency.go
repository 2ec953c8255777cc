package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/registry"
)

// MockSleeperModule is a shared module for concurrency tests. It registers
// the "sleeper" node type and records the execution window of each node that
// uses it, keyed by the node's "id" config field.
type MockSleeperModule struct {
	mu             sync.Mutex
	executionTimes map[string]*ExecutionRecord
	sleepDuration  time.Duration
}

// NewMockSleeperModule creates a sleeper module for testing.
func NewMockSleeperModule(sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		executionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
	}
}

// Register registers the "sleeper" node type.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	r.Register("sleeper", func() executor.NodeExecutor { return &sleeperExecutor{module: m} })
}

// Record returns the execution window recorded for a node id.
func (m *MockSleeperModule) Record(id string) *ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executionTimes[id]
}

type sleeperExecutor struct {
	module *MockSleeperModule
}

func (e *sleeperExecutor) Type() string                               { return "sleeper" }
func (e *sleeperExecutor) ValidateConfig(config map[string]any) error { return nil }

func (e *sleeperExecutor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	id, _ := config["id"].(string)

	start := time.Now()
	time.Sleep(e.module.sleepDuration)
	end := time.Now()

	e.module.mu.Lock()
	e.module.executionTimes[id] = &ExecutionRecord{Start: start, End: end}
	e.module.mu.Unlock()

	return map[string]any{"id": id}, nil
}
