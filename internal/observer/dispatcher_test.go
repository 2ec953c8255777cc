package observer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversInOrder(t *testing.T) {
	rec := NewRecorder()
	d := NewDispatcher(rec)

	for i := 0; i < 10; i++ {
		d.Publish(Event{RunID: "run-1", Kind: KindLog, Payload: i})
	}
	d.Close()

	events := rec.Events()
	require.Len(t, events, 10)
	for i, ev := range events {
		assert.Equal(t, i, ev.Payload)
		assert.False(t, ev.Timestamp.IsZero())
	}
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	block := make(chan struct{})
	var once sync.Once
	slow := Func(func(Event) {
		once.Do(func() { <-block })
	})
	d := NewDispatcher(slow)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Far more events than the buffer holds, against a stuck sink.
		for i := 0; i < defaultBufferSize*4; i++ {
			d.Publish(Event{RunID: "run-1", Kind: KindLog, Payload: i})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow observer")
	}

	close(block)
	d.Close()
	assert.Greater(t, d.Dropped(), 0)
}

func TestDispatcher_PanickingSinkIsContained(t *testing.T) {
	d := NewDispatcher(Func(func(Event) { panic("observer bug") }))

	assert.NotPanics(t, func() {
		d.Publish(Event{RunID: "run-1", Kind: KindError})
		d.Publish(Event{RunID: "run-1", Kind: KindError})
		d.Close()
	})
}

func TestDispatcher_PublishAfterClose(t *testing.T) {
	rec := NewRecorder()
	d := NewDispatcher(rec)
	d.Close()

	d.Publish(Event{RunID: "run-1", Kind: KindLog})
	assert.Empty(t, rec.Events())
}

func TestRecorder_ByKind(t *testing.T) {
	rec := NewRecorder()
	rec.Notify(Event{Kind: KindStatus, Payload: "running"})
	rec.Notify(Event{Kind: KindLog, Payload: "hello"})
	rec.Notify(Event{Kind: KindStatus, Payload: "completed"})

	statuses := rec.ByKind(KindStatus)
	require.Len(t, statuses, 2)
	assert.Equal(t, "running", statuses[0].Payload)
	assert.Equal(t, "completed", statuses[1].Payload)
}
