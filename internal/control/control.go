// Package control implements cooperative run control. Operators set pause
// and stop flags; the engine consults them at round boundaries only, so an
// in-flight node always runs to completion. Nothing here preempts work.
package control

import (
	"context"
	"sync"
)

// Flags carries the pause/stop requests for one run. Settable by the
// controller, readable by the engine.
type Flags struct {
	mu     sync.Mutex
	paused bool
	stop   bool
	reason string
	// changed is closed and replaced on every state change so waiters can
	// re-check without polling.
	changed chan struct{}
}

// NewFlags creates a clear flag set.
func NewFlags() *Flags {
	return &Flags{changed: make(chan struct{})}
}

// RequestPause asks the engine to hold before starting the next round.
func (f *Flags) RequestPause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
	f.broadcastLocked()
}

// ClearPause releases a pause request.
func (f *Flags) ClearPause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
	f.broadcastLocked()
}

// RequestStop asks the engine to halt at the next round boundary. The first
// reason wins.
func (f *Flags) RequestStop(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.stop {
		f.stop = true
		f.reason = reason
	}
	f.broadcastLocked()
}

// PauseRequested reports whether a pause is pending.
func (f *Flags) PauseRequested() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

// StopRequested reports whether a stop is pending, with its reason.
func (f *Flags) StopRequested() (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stop, f.reason
}

// AwaitResume blocks while a pause is in effect. It returns true if a stop
// was requested while waiting, and an error only when ctx is cancelled.
func (f *Flags) AwaitResume(ctx context.Context) (stopped bool, err error) {
	for {
		f.mu.Lock()
		if f.stop {
			f.mu.Unlock()
			return true, nil
		}
		if !f.paused {
			f.mu.Unlock()
			return false, nil
		}
		ch := f.changed
		f.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

func (f *Flags) broadcastLocked() {
	close(f.changed)
	f.changed = make(chan struct{})
}
