package observer

import (
	"log/slog"
)

// SlogObserver writes every event to a structured logger. It is the default
// sink when no real-time transport is configured.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver wraps a logger as an event sink.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

// Notify implements Observer.
func (o *SlogObserver) Notify(event Event) {
	o.logger.Info("Run event.",
		"run_id", event.RunID,
		"kind", string(event.Kind),
		"payload", event.Payload,
	)
}
