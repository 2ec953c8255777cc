package execution

import "time"

// LogLevel classifies a log entry.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// LogEntry is one immutable line in a run's ordered log.
type LogEntry struct {
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	NodeID    string         `json:"node_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// LogObserver receives every appended entry, synchronously, after the append.
// Implementations must return quickly; anything slow belongs behind a
// buffered dispatcher.
type LogObserver func(LogEntry)

// StatusObserver receives every run status change after it is applied.
type StatusObserver func(Status)
