package submission

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// EventQueue is an unbounded FIFO between one producer and one consumer.
// Publish never blocks; the consumer drains whatever is available.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	ready  chan struct{}
}

// NewEventQueue creates an empty, open queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{
		ready: make(chan struct{}, 1),
	}
}

// Publish appends e. Events published after Close are dropped.
func (q *EventQueue) Publish(e Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		log.Debug().Str("kind", string(e.Kind)).Msg("Dropping event published after close")
		return
	}
	q.events = append(q.events, e)
	q.mu.Unlock()

	q.signal()
}

// Close marks the end of the stream. Safe to call more than once.
func (q *EventQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

// Drain returns every event currently queued, oldest first, without blocking.
// done is true once the queue is closed and nothing further will arrive.
func (q *EventQueue) Drain() (events []Event, done bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	events = q.events
	q.events = nil
	return events, q.closed
}

// Wait blocks until at least one event is queued or the queue is closed, then drains.
func (q *EventQueue) Wait(ctx context.Context) ([]Event, bool, error) {
	for {
		events, done := q.Drain()
		if len(events) > 0 || done {
			return events, done, nil
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *EventQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
