package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/service"
)

// startServer runs the HTTP control surface: health, run status, logs, and
// pause/resume/stop.
func (a *App) startServer(port int) {
	a.logger.Debug("Configuring control server.")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.HandleFunc("GET /runs", a.listRunsHandler)
	mux.HandleFunc("GET /runs/{id}", a.runStatusHandler)
	mux.HandleFunc("GET /runs/{id}/logs", a.runLogsHandler)
	mux.HandleFunc("POST /runs/{id}/pause", a.controlHandler((*service.Service).Pause))
	mux.HandleFunc("POST /runs/{id}/resume", a.controlHandler((*service.Service).Resume))
	mux.HandleFunc("POST /runs/{id}/stop", a.stopHandler)

	addr := fmt.Sprintf(":%d", port)
	a.httpServer = &http.Server{Addr: addr, Handler: mux}

	go func() {
		a.logger.Info("🩺 Control server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Control server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) stopServer(ctx context.Context) {
	if a.httpServer == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Control server shutdown failed", "error", err)
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := a.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	type item struct {
		ID       string           `json:"id"`
		Workflow string           `json:"workflow"`
		Status   execution.Status `json:"status"`
	}
	out := make([]item, 0, len(runs))
	for _, run := range runs {
		out = append(out, item{ID: run.ID, Workflow: run.Workflow.Name, Status: run.Context.Status()})
	}
	writeJSON(w, out)
}

func (a *App) runStatusHandler(w http.ResponseWriter, r *http.Request) {
	report, err := a.service.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, report)
}

func (a *App) runLogsHandler(w http.ResponseWriter, r *http.Request) {
	level := execution.LogLevel(r.URL.Query().Get("level"))
	if level == "" {
		level = execution.LogDebug
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	logs, err := a.service.Logs(r.Context(), r.PathValue("id"), level, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, logs)
}

// controlHandler adapts a service control method into an HTTP handler.
func (a *App) controlHandler(op func(*service.Service, context.Context, string) (execution.Status, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := op(a.service, r.Context(), r.PathValue("id"))
		a.writeControlResult(w, status, err)
	}
}

func (a *App) stopHandler(w http.ResponseWriter, r *http.Request) {
	status, err := a.service.Stop(r.Context(), r.PathValue("id"), r.URL.Query().Get("reason"))
	a.writeControlResult(w, status, err)
}

func (a *App) writeControlResult(w http.ResponseWriter, status execution.Status, err error) {
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRunNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, execution.ErrInvalidTransition), errors.Is(err, execution.ErrTerminalStatus):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, map[string]any{"status": status})
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrRunNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
