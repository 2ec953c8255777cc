// Package observer defines the event sink the engine emits status, log and
// result events into. The sink feeds an external real-time transport; it is
// deliberately decoupled so a slow or failing consumer can never stall or
// fail a run.
package observer

import (
	"time"
)

// Kind classifies an emitted event.
type Kind string

const (
	KindStatus Kind = "status"
	KindLog    Kind = "log"
	KindResult Kind = "result"
	KindError  Kind = "error"
)

// Event is one structured notification about an in-flight run.
type Event struct {
	RunID     string    `json:"run_id"`
	Kind      Kind      `json:"kind"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Observer consumes run events. Implementations are invoked from the
// dispatcher's goroutine, never from the engine's hot path.
type Observer interface {
	Notify(event Event)
}

// Func adapts a plain function to the Observer interface.
type Func func(Event)

// Notify implements Observer.
func (f Func) Notify(event Event) { f(event) }

// Nop is an observer that discards everything.
var Nop Observer = Func(func(Event) {})
