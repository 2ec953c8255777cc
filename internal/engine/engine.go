// Package engine implements the round-based scheduler that drives one
// workflow run: it builds the graph, resolves executors, then repeatedly
// executes every ready node of a round in parallel, consulting the control
// flags only at round boundaries so in-flight nodes always finish.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vk/flowgrid/internal/control"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/observer"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/workflow"
)

// outputNodeType marks nodes whose output becomes the run's final output.
const outputNodeType = "output"

// Outcome is the final report of one run.
type Outcome struct {
	Status  execution.Status
	Output  any
	Err     error
	Summary execution.Summary
}

// Option configures an Engine.
type Option func(*Engine)

// WithNodeTimeout bounds each node execution with a per-node deadline.
func WithNodeTimeout(d time.Duration) Option {
	return func(e *Engine) { e.nodeTimeout = d }
}

// WithObserver attaches an event sink. Events flow through a buffered
// dispatcher, so a slow sink can never stall the run.
func WithObserver(sink observer.Observer) Option {
	return func(e *Engine) { e.sink = sink }
}

// Engine schedules workflow runs against a fixed node type registry. It is
// stateless across runs and safe for concurrent use.
type Engine struct {
	registry    *registry.Registry
	sink        observer.Observer
	nodeTimeout time.Duration
}

// New creates an engine around the given registry.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{registry: reg}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the workflow to a terminal status and returns the outcome.
// The caller owns the context's lifecycle: create it pending, pass it here,
// and read state from it afterwards. A nil flags means the run is not
// externally controllable.
//
// Run blocks until the run is terminal. Cancelling ctx fails the run at the
// next round boundary; in-flight nodes see the cancellation through their
// own contexts.
func (e *Engine) Run(ctx context.Context, wf *workflow.Workflow, ec *execution.Context, flags *control.Flags) Outcome {
	logger := ctxlog.FromContext(ctx).With("run_id", ec.RunID(), "workflow", wf.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	if flags == nil {
		flags = control.NewFlags()
	}

	disp := observer.NewDispatcher(e.sink)
	defer disp.Close()
	e.wireObservers(ec, disp)

	r := &run{
		engine: e,
		wf:     wf,
		ec:     ec,
		flags:  flags,
		disp:   disp,
		logger: logger,
	}
	return r.run(ctx)
}

// wireObservers forwards the context's log and status changes into the
// dispatcher as structured events.
func (e *Engine) wireObservers(ec *execution.Context, disp *observer.Dispatcher) {
	runID := ec.RunID()
	ec.SetLogObserver(func(entry execution.LogEntry) {
		disp.Publish(observer.Event{RunID: runID, Kind: observer.KindLog, Payload: entry})
	})
	ec.SetStatusObserver(func(s execution.Status) {
		disp.Publish(observer.Event{RunID: runID, Kind: observer.KindStatus, Payload: map[string]any{"status": string(s)}})
	})
}

// run is the per-invocation scheduler state.
type run struct {
	engine *Engine
	wf     *workflow.Workflow
	ec     *execution.Context
	flags  *control.Flags
	disp   *observer.Dispatcher
	logger *slog.Logger

	graph     *graph.Graph
	executors map[string]executor.NodeExecutor
	inDegree  map[string]int

	failure       error
	lastCompleted string
}

func (r *run) run(ctx context.Context) Outcome {
	g, err := graph.Build(ctx, r.wf)
	if err != nil {
		r.logger.Error("Graph construction failed.", "error", err)
		return r.fail(err)
	}
	r.graph = g

	// Resolve every node type before any execution so an unknown type fails
	// the run with zero nodes started.
	r.executors = make(map[string]executor.NodeExecutor, g.Len())
	for _, id := range g.NodeIDs() {
		node, _ := g.Node(id)
		factory, err := r.engine.registry.Resolve(node.Type)
		if err != nil {
			r.logger.Error("Node type resolution failed.", "node_id", id, "error", err)
			return r.fail(err)
		}
		r.executors[id] = factory()
	}

	if err := r.ec.Start(); err != nil {
		return Outcome{Status: r.ec.Status(), Err: err, Summary: r.ec.Summary()}
	}
	r.logger.Info("Run started.", "node_count", g.Len())

	for _, id := range g.NodeIDs() {
		r.ec.SetNodeStatus(id, execution.NodePending)
	}
	r.inDegree = g.InDegrees()

	for round := 1; ; round++ {
		halt, outcome := r.checkControls(ctx)
		if halt {
			return outcome
		}

		ready := r.readyNodes()
		if len(ready) == 0 {
			if r.pendingCount() > 0 {
				if r.failure != nil {
					// Nodes blocked behind the failure never run.
					return r.fail(r.failure)
				}
				r.logger.Error("Scheduler stalled with pending nodes.", "pending", r.pendingCount())
				return r.fail(ErrEngineInvariant)
			}
			break
		}
		if r.failure != nil {
			// A sibling failed in the previous round; nothing new starts.
			return r.fail(r.failure)
		}

		r.logger.Debug("Starting round.", "round", round, "ready", ready)
		r.executeRound(ctx, ready)
	}

	if r.failure != nil {
		return r.fail(r.failure)
	}
	return r.complete()
}

// checkControls applies stop, pause and cancellation at a round boundary.
// It returns a terminal outcome when the run must halt.
func (r *run) checkControls(ctx context.Context) (bool, Outcome) {
	if stopped, reason := r.flags.StopRequested(); stopped {
		return true, r.stop(reason)
	}
	if r.flags.PauseRequested() {
		r.logger.Info("Pausing at round boundary.")
		stopped, err := r.flags.AwaitResume(ctx)
		if err != nil {
			return true, r.fail(err)
		}
		if stopped {
			_, reason := r.flags.StopRequested()
			return true, r.stop(reason)
		}
		r.logger.Info("Resumed.")
	}
	if err := ctx.Err(); err != nil {
		return true, r.fail(err)
	}
	return false, Outcome{}
}

// readyNodes returns the pending nodes with no unfinished dependencies, in
// sorted order for deterministic scheduling.
func (r *run) readyNodes() []string {
	var ready []string
	for _, id := range r.graph.NodeIDs() {
		if r.inDegree[id] == 0 && r.ec.NodeStatus(id) == execution.NodePending {
			ready = append(ready, id)
		}
	}
	return ready
}

func (r *run) pendingCount() int {
	n := 0
	for _, s := range r.ec.NodeStatuses() {
		if !s.Terminal() {
			n++
		}
	}
	return n
}

// executeRound runs every ready node concurrently and folds the results back
// into the run state once all of them finish.
func (r *run) executeRound(ctx context.Context, ready []string) {
	results := make([]*executor.Result, len(ready))

	var wg sync.WaitGroup
	for i, id := range ready {
		r.ec.SetNodeStatus(id, execution.NodeRunning)
		r.ec.AddLog(execution.LogInfo, "node started", id, nil)

		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			node, _ := r.graph.Node(id)

			nodeCtx := ctx
			if r.engine.nodeTimeout > 0 {
				var cancel context.CancelFunc
				nodeCtx, cancel = context.WithTimeout(ctx, r.engine.nodeTimeout)
				defer cancel()
			}
			results[i] = executor.Run(nodeCtx, id, r.executors[id], node.Config, r.ec)
		}(i, id)
	}
	wg.Wait()

	// Fold results in node id order so logs and the last-completed marker
	// are deterministic regardless of goroutine completion order.
	sort.Slice(results, func(i, j int) bool { return results[i].NodeID < results[j].NodeID })
	for _, res := range results {
		r.applyResult(res)
	}
}

func (r *run) applyResult(res *executor.Result) {
	r.disp.Publish(observer.Event{RunID: r.ec.RunID(), Kind: observer.KindResult, Payload: res})

	if res.Status != executor.ResultSuccess {
		r.ec.SetNodeStatus(res.NodeID, execution.NodeFailed)
		r.disp.Publish(observer.Event{RunID: r.ec.RunID(), Kind: observer.KindError, Payload: map[string]any{
			"node_id": res.NodeID,
			"error":   res.Error,
		}})
		if r.failure == nil {
			r.failure = errors.New("node " + res.NodeID + ": " + res.Error)
		}
		return
	}

	if err := r.ec.SetNodeOutput(res.NodeID, res.Output); err != nil {
		r.ec.SetNodeStatus(res.NodeID, execution.NodeFailed)
		r.ec.AddLog(execution.LogError, err.Error(), res.NodeID, nil)
		if r.failure == nil {
			r.failure = err
		}
		return
	}
	r.ec.SetNodeStatus(res.NodeID, execution.NodeCompleted)
	r.ec.AddLog(execution.LogInfo, "node completed", res.NodeID, nil)
	r.lastCompleted = res.NodeID

	for _, next := range r.graph.Downstream(res.NodeID) {
		r.inDegree[next]--
	}
}

// skipRemaining marks every non-terminal node skipped. Called when the run
// halts early; outputs already recorded stay in the context.
func (r *run) skipRemaining(reason string) {
	for _, id := range r.graph.NodeIDs() {
		if !r.ec.NodeStatus(id).Terminal() {
			r.ec.SetNodeStatus(id, execution.NodeSkipped)
			r.ec.AddLog(execution.LogDebug, "node skipped", id, map[string]any{"reason": reason})
		}
	}
}

func (r *run) fail(err error) Outcome {
	if r.graph != nil {
		r.skipRemaining("run failed")
	}
	// A controller may already have applied a terminal status; only the
	// first terminal transition wins.
	if !r.ec.Status().Terminal() {
		if terr := r.ec.Fail(err); terr != nil {
			r.logger.Warn("Could not record failure status.", "error", terr)
		}
	}
	r.disp.Publish(observer.Event{RunID: r.ec.RunID(), Kind: observer.KindError, Payload: map[string]any{"error": err.Error()}})
	r.logger.Error("Run failed.", "error", err)
	return Outcome{Status: r.ec.Status(), Err: err, Summary: r.ec.Summary()}
}

func (r *run) stop(reason string) Outcome {
	r.skipRemaining("run stopped")
	if !r.ec.Status().Terminal() {
		if err := r.ec.Stop(reason); err != nil {
			r.logger.Warn("Could not record stopped status.", "error", err)
		}
	}
	r.logger.Warn("Run stopped.", "reason", reason)
	return Outcome{Status: r.ec.Status(), Summary: r.ec.Summary()}
}

func (r *run) complete() Outcome {
	output := r.finalOutput()
	for {
		err := r.ec.Complete(output)
		if err == nil {
			r.logger.Info("Run completed.")
			break
		}
		if r.ec.Status() != execution.StatusPaused {
			// A concurrent stop won the race; its terminal status stands.
			r.logger.Warn("Could not record completed status.", "error", err)
			break
		}
		// A pause landed after the final round boundary. Every node has
		// already finished, so there is nothing left to pause: resume and
		// retry the completion.
		r.logger.Info("Pause arrived after the last round; completing.")
		r.flags.ClearPause()
		if rerr := r.ec.Resume(); rerr != nil && r.ec.Status() != execution.StatusRunning {
			r.logger.Warn("Could not record completed status.", "error", rerr)
			break
		}
	}
	return Outcome{Status: r.ec.Status(), Output: output, Summary: r.ec.Summary()}
}

// finalOutput picks the run's output: the output-typed node's recorded
// output when the workflow declares one, otherwise the output of the last
// node to complete.
func (r *run) finalOutput() any {
	for _, id := range r.graph.NodeIDs() {
		node, _ := r.graph.Node(id)
		if node.Type == outputNodeType && r.ec.NodeStatus(id) == execution.NodeCompleted {
			return r.ec.NodeOutput(id, nil)
		}
	}
	if r.lastCompleted != "" {
		return r.ec.NodeOutput(r.lastCompleted, nil)
	}
	return nil
}
