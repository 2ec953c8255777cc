package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/loader"
	"github.com/vk/flowgrid/internal/observer"
	"github.com/vk/flowgrid/internal/service"
)

// Run executes the main application logic: load the workflow file, start a
// run, wait for it, and print the final output.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.SocketIOURL != "" {
		emitter, err := observer.NewSocketIOEmitter(ctx, observer.SocketIOConfig{URL: a.config.SocketIOURL})
		if err != nil {
			a.logger.Warn("Real-time emitter unavailable, events go to the log instead.", "error", err)
		} else {
			a.sink.swap(emitter)
			defer emitter.Close()
		}
	}

	if a.config.ServerPort > 0 {
		a.startServer(a.config.ServerPort)
		defer a.stopServer(ctx)
	}

	wf, err := loader.Load(ctx, a.config.WorkflowPath)
	if err != nil {
		return fmt.Errorf("failed to load workflow: %w", err)
	}

	input, err := parseInput(a.config.InputJSON)
	if err != nil {
		return fmt.Errorf("failed to parse run input: %w", err)
	}

	a.logger.Info("🚀 Starting workflow run.", "workflow", wf.Name)
	run, err := a.service.Start(ctx, service.StartRequest{Workflow: wf, Input: input})
	if err != nil {
		return err
	}

	outcome, err := a.service.Wait(ctx, run.ID)
	if err != nil {
		return err
	}
	a.logger.Info("🏁 Run finished.", "run_id", run.ID, "status", outcome.Status, "duration", outcome.Summary.Duration)

	switch outcome.Status {
	case execution.StatusCompleted:
		encoded, err := json.MarshalIndent(outcome.Output, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding run output: %w", err)
		}
		fmt.Fprintln(a.outW, string(encoded))
		return nil
	case execution.StatusStopped:
		return fmt.Errorf("run stopped: %s", run.Context.StopReason())
	default:
		return fmt.Errorf("run failed: %w", outcome.Err)
	}
}

func parseInput(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var input map[string]any
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, err
	}
	return input, nil
}
