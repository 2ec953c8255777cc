package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/engine"
	"github.com/vk/flowgrid/internal/inference"
	"github.com/vk/flowgrid/internal/observer"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/service"
)

// sinkProxy lets the event sink be swapped after the engine is built; the
// Socket.IO emitter needs a live context, which only exists at Run time.
type sinkProxy struct {
	target atomic.Value // observer.Observer
}

func newSinkProxy(initial observer.Observer) *sinkProxy {
	p := &sinkProxy{}
	p.target.Store(initial)
	return p
}

func (p *sinkProxy) swap(sink observer.Observer) { p.target.Store(sink) }

func (p *sinkProxy) Notify(event observer.Event) {
	p.target.Load().(observer.Observer).Notify(event)
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	engine   *engine.Engine
	service  *service.Service
	sink     *sinkProxy

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// An empty modules list registers the built-in node types.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(inferenceClientFromEnv())
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All node type modules registered.", "types", reg.Types())

	sink := newSinkProxy(observer.NewSlogObserver(logger))
	opts := []engine.Option{engine.WithObserver(sink)}
	if cfg.NodeTimeout > 0 {
		opts = append(opts, engine.WithNodeTimeout(cfg.NodeTimeout))
	}
	eng := engine.New(reg, opts...)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		engine:   eng,
		service:  service.New(eng, nil),
		sink:     sink,
	}
}

// inferenceClientFromEnv builds the model_call backend from the environment.
// Without an API key, model_call nodes fail at execution with a clear error
// instead of failing startup for workflows that never use them.
func inferenceClientFromEnv() inference.Client {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}
	return inference.NewOpenAIClient(apiKey, os.Getenv("OPENAI_BASE_URL"))
}

// RunContext returns ctx with the app's logger attached, for callers that
// drive the service directly instead of going through Run.
func (a *App) RunContext(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Service returns the run-management facade. This is primarily for testing.
func (a *App) Service() *service.Service {
	return a.service
}
