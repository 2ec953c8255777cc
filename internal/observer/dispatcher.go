package observer

import (
	"sync"
	"time"
)

const defaultBufferSize = 256

// Dispatcher decouples the engine from its observer. Publish never blocks:
// events go into a bounded buffer consumed by a single goroutine, and when
// the buffer is full the oldest event is dropped to make room. A panicking
// observer is contained and disabled for the rest of the run.
type Dispatcher struct {
	sink Observer

	mu      sync.Mutex
	buf     []Event
	wake    chan struct{}
	closed  bool
	done    chan struct{}
	dropped int
}

// NewDispatcher starts a dispatcher around the given sink. A nil sink yields
// a dispatcher that drops everything.
func NewDispatcher(sink Observer) *Dispatcher {
	if sink == nil {
		sink = Nop
	}
	d := &Dispatcher{
		sink: sink,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go d.loop()
	return d
}

// Publish enqueues an event, stamping the time when absent. It never blocks
// and is safe from any goroutine.
func (d *Dispatcher) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if len(d.buf) >= defaultBufferSize {
		d.buf = d.buf[1:]
		d.dropped++
	}
	d.buf = append(d.buf, event)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Dropped returns how many events were discarded due to a slow sink.
func (d *Dispatcher) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Close drains buffered events and stops the dispatcher. Publish calls after
// Close are silently discarded.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	<-d.done
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for {
		d.mu.Lock()
		batch := d.buf
		d.buf = nil
		closed := d.closed
		d.mu.Unlock()

		for _, ev := range batch {
			d.deliver(ev)
		}

		if closed {
			// One final drain in case Publish raced with Close.
			d.mu.Lock()
			batch = d.buf
			d.buf = nil
			d.mu.Unlock()
			for _, ev := range batch {
				d.deliver(ev)
			}
			return
		}

		<-d.wake
	}
}

// deliver shields the dispatcher from a panicking sink.
func (d *Dispatcher) deliver(ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.sink = Nop
		}
	}()
	d.sink.Notify(ev)
}
