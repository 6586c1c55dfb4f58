// Package bus provides the typed event bus connecting the presentation
// layer to the workflow engine.
//
// Each event kind has exactly one long-lived consumer. Events dispatched
// before a consumer subscribes are buffered unbounded, FIFO per kind.
package bus

import (
	"log/slog"
	"sync"

	"github.com/gremialdev/memberflow/internal/models"
)

// Bus routes request events to per-kind consumer channels.
type Bus struct {
	mu     sync.Mutex
	queues map[models.EventKind]*queue
	closed bool
}

// queue holds the pending events of a single kind plus the consumer channel
// fed by its pump goroutine.
type queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []models.Event
	out     chan models.Event
	done    chan struct{}
	closed  bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{queues: make(map[models.EventKind]*queue)}
}

// Dispatch enqueues an event for delivery to the consumer of its kind.
// Events are delivered in dispatch order. Dispatch never blocks.
func (b *Bus) Dispatch(ev models.Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		slog.Warn("Bus.Dispatch: dropping event on closed bus", "kind", ev.Kind)
		return
	}
	q := b.queue(ev.Kind)
	b.mu.Unlock()

	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.cond.Signal()
	q.mu.Unlock()
	slog.Debug("Bus.Dispatch: event enqueued", "kind", ev.Kind)
}

// Events returns the consumer channel for the given kind. The channel is
// created on first use; calling Events twice for the same kind returns the
// same channel, so exactly one receiver observes each event.
func (b *Bus) Events(kind models.EventKind) <-chan models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue(kind).out
}

// Close stops all pumps. Buffered events that were never consumed are
// discarded; consumer channels are closed after draining in-flight sends.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for kind, q := range b.queues {
		q.mu.Lock()
		q.closed = true
		close(q.done)
		q.cond.Signal()
		q.mu.Unlock()
		slog.Debug("Bus.Close: queue closed", "kind", kind)
	}
}

// queue returns the queue for kind, creating it and starting its pump if
// needed. Caller must hold b.mu.
func (b *Bus) queue(kind models.EventKind) *queue {
	q, ok := b.queues[kind]
	if !ok {
		q = &queue{out: make(chan models.Event), done: make(chan struct{})}
		q.cond = sync.NewCond(&q.mu)
		b.queues[kind] = q
		go q.pump()
	}
	return q
}

// pump moves events from the pending buffer to the consumer channel one at
// a time, preserving FIFO order.
func (q *queue) pump() {
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			close(q.out)
			return
		}
		ev := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		select {
		case q.out <- ev:
		case <-q.done:
			close(q.out)
			return
		}
	}
}
