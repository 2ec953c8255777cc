// Package service is the run-management facade: it owns the run registry,
// assigns run ids, launches engine runs asynchronously, and exposes status,
// log and control operations keyed by run id.
package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/vk/flowgrid/internal/control"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/engine"
	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/workflow"
)

// Run is one tracked workflow run. The engine drives Context to a terminal
// status in a background goroutine; Done is closed when it gets there.
type Run struct {
	ID         string
	Workflow   *workflow.Workflow
	Context    *execution.Context
	Controller *control.Controller

	done    chan struct{}
	outcome engine.Outcome
}

// Done is closed once the run reaches a terminal status.
func (r *Run) Done() <-chan struct{} { return r.done }

// Outcome returns the final outcome. Valid only after Done is closed.
func (r *Run) Outcome() engine.Outcome { return r.outcome }

// StatusReport is a point-in-time view of one run.
type StatusReport struct {
	RunID        string            `json:"run_id"`
	Status       execution.Status  `json:"status"`
	Progress     float64           `json:"progress"`
	CurrentNodes []string          `json:"current_nodes,omitempty"`
	Message      string            `json:"message,omitempty"`
	Summary      execution.Summary `json:"summary"`
}

// Service manages workflow runs on top of an engine and a run store. Safe
// for concurrent use.
type Service struct {
	engine *engine.Engine
	store  Store
	wg     sync.WaitGroup
}

// New creates a service. A nil store gets an in-memory one.
func New(eng *engine.Engine, store Store) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{engine: eng, store: store}
}

// StartRequest describes a run to launch. RunID is optional; external
// triggers may supply their own correlation id, otherwise the service
// assigns a uuid.
type StartRequest struct {
	RunID    string
	Workflow *workflow.Workflow
	Input    map[string]any
}

// Start registers a new run and launches it asynchronously. The returned run
// is typically still pending; the engine flips it to running almost
// immediately. ctx bounds the whole run, not just this call. A request
// reusing a tracked run id fails with ErrDuplicateRun.
func (s *Service) Start(ctx context.Context, req StartRequest) (*Run, error) {
	id := req.RunID
	if id == "" {
		id = uuid.NewString()
	}
	ec := execution.NewContext(id, req.Input)
	flags := control.NewFlags()

	run := &Run{
		ID:         id,
		Workflow:   req.Workflow,
		Context:    ec,
		Controller: control.NewController(ec, flags),
		done:       make(chan struct{}),
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("Starting run.", "run_id", id, "workflow", req.Workflow.Name)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		run.outcome = s.engine.Run(ctx, req.Workflow, ec, flags)
		close(run.done)
	}()
	return run, nil
}

// Get returns a tracked run by id.
func (s *Service) Get(ctx context.Context, id string) (*Run, error) {
	return s.store.GetRun(ctx, id)
}

// List returns every tracked run.
func (s *Service) List(ctx context.Context) ([]*Run, error) {
	return s.store.ListRuns(ctx)
}

// Status reports the current state of a run.
func (s *Service) Status(ctx context.Context, id string) (StatusReport, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return StatusReport{}, err
	}
	ec := run.Context

	report := StatusReport{
		RunID:        run.ID,
		Status:       ec.Status(),
		Progress:     ec.Progress(),
		CurrentNodes: ec.RunningNodes(),
		Summary:      ec.Summary(),
	}
	switch report.Status {
	case execution.StatusFailed:
		report.Message = ec.FailureMessage()
	case execution.StatusStopped:
		report.Message = ec.StopReason()
	}
	return report, nil
}

// Logs returns a run's log, filtered to entries at or above minLevel. A
// non-positive limit returns everything; otherwise the most recent limit
// entries are returned.
func (s *Service) Logs(ctx context.Context, id string, minLevel execution.LogLevel, limit int) ([]execution.LogEntry, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	var out []execution.LogEntry
	min := severity(minLevel)
	for _, entry := range run.Context.Logs() {
		if severity(entry.Level) >= min {
			out = append(out, entry)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Pause requests a cooperative pause of a running run.
func (s *Service) Pause(ctx context.Context, id string) (execution.Status, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return "", err
	}
	return run.Controller.Pause()
}

// Resume releases a paused run.
func (s *Service) Resume(ctx context.Context, id string) (execution.Status, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return "", err
	}
	return run.Controller.Resume()
}

// Stop requests a cooperative stop of a running or paused run.
func (s *Service) Stop(ctx context.Context, id, reason string) (execution.Status, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return "", err
	}
	return run.Controller.Stop(reason)
}

// Wait blocks until the run finishes or ctx is cancelled.
func (s *Service) Wait(ctx context.Context, id string) (engine.Outcome, error) {
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return engine.Outcome{}, err
	}
	select {
	case <-run.done:
		return run.outcome, nil
	case <-ctx.Done():
		return engine.Outcome{}, ctx.Err()
	}
}

// Shutdown waits for every launched run goroutine to finish. Callers wanting
// a prompt shutdown stop the runs first.
func (s *Service) Shutdown() {
	s.wg.Wait()
}

// severity orders log levels for filtering.
func severity(level execution.LogLevel) int {
	switch level {
	case execution.LogDebug:
		return 0
	case execution.LogInfo:
		return 1
	case execution.LogWarn:
		return 2
	case execution.LogError:
		return 3
	}
	return 0
}
