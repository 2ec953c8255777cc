// Package httprequest provides a node type for calling HTTP endpoints with
// templated URLs and bodies.
package httprequest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/execution"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/registry"
)

// TypeName is the node type string this module registers.
const TypeName = "http_request"

const defaultTimeout = 30 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

// Register registers the node type with the engine.
func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	r.Register(TypeName, func() executor.NodeExecutor { return &Executor{client: client} })
}

// Executor performs one HTTP request.
//
// Config:
//
//	url     — request URL, templated (required)
//	method  — HTTP method, default GET
//	body    — optional request body; objects are sent as JSON
//	headers — optional {name: value} object
//
// Output: {"status": <code>, "body": <decoded JSON or raw string>}.
type Executor struct {
	client *http.Client
}

func (e *Executor) Type() string { return TypeName }

func (e *Executor) ValidateConfig(config map[string]any) error {
	if u, ok := executor.ConfigString(config, "url"); !ok || u == "" {
		return executor.NewValidationError(TypeName, "url", "required")
	}
	if method, present := executor.ConfigString(config, "method"); present {
		switch strings.ToUpper(method) {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return executor.NewValidationError(TypeName, "method", fmt.Sprintf("unsupported method %q", method))
		}
	}
	return nil
}

func (e *Executor) Execute(ctx context.Context, config map[string]any, ec *execution.Context) (any, error) {
	url, _ := executor.ConfigString(config, "url")
	method, ok := executor.ConfigString(config, "method")
	if !ok {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	var bodyReader io.Reader
	contentType := ""
	if body, present := config["body"]; present {
		switch bv := body.(type) {
		case string:
			bodyReader = strings.NewReader(bv)
		default:
			raw, err := json.Marshal(bv)
			if err != nil {
				return nil, fmt.Errorf("encoding request body: %w", err)
			}
			bodyReader = strings.NewReader(string(raw))
			contentType = "application/json"
		}
	}

	ctxlog.FromContext(ctx).Debug("Making HTTP request.", "method", method, "url", url)

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if headers, ok := executor.ConfigMap(config, "headers"); ok {
		for name, value := range headers {
			req.Header.Set(name, fmt.Sprintf("%v", value))
		}
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		body = string(raw)
	}
	return map[string]any{"status": float64(resp.StatusCode), "body": body}, nil
}
