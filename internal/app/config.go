package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkflowPath string // .hcl, .yaml or .json workflow file
	InputJSON    string // initial run payload as a JSON object

	LogFormat   string
	LogLevel    string
	ServerPort  int // HTTP control surface; 0 is disabled
	NodeTimeout time.Duration
	SocketIOURL string // real-time event emitter; empty logs events instead
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkflowPath == "" {
		return nil, errors.New("WorkflowPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
