package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrRunNotFound indicates an operation referenced an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// ErrDuplicateRun indicates a run id collision on creation.
var ErrDuplicateRun = errors.New("run already exists")

// Store keeps the service's run registry. Implementations must be safe for
// concurrent use; the default is in-memory, a persistent backend can be
// swapped in without touching the service.
type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context) ([]*Run, error)
}

// MemoryStore is the ephemeral Store used by default. Runs live for the
// lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

// CreateRun implements Store.
func (s *MemoryStore) CreateRun(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %q: %w", run.ID, ErrDuplicateRun)
	}
	s.runs[run.ID] = run
	return nil
}

// GetRun implements Store.
func (s *MemoryStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %q: %w", id, ErrRunNotFound)
	}
	return run, nil
}

// ListRuns implements Store, returning runs sorted by id.
func (s *MemoryStore) ListRuns(ctx context.Context) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
