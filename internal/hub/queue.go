package hub

import (
	"sync"

	"github.com/solaria-labs/herald/internal/event"
)

// deliveryQueue is a thread-safe FIFO queue of pending events.
//
// The queue is unbounded; producers never block. Thread-safety covers
// external enqueuing while the hub's loop consumes, but consumption itself
// (Peek/Pop) must stay on the single loop goroutine.
//
// A buffered signal channel enables context-aware waiting in the loop and
// coalesces bursts of wakeups into one.
type deliveryQueue struct {
	mu     sync.Mutex
	events []*event.Event
	closed bool
	signal chan struct{} // signals availability (buffered, size 1)
}

func newDeliveryQueue() *deliveryQueue {
	return &deliveryQueue{
		events: make([]*event.Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *deliveryQueue) Enqueue(ev *event.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, ev)
	q.wakeLocked()
	return true
}

// TryPeek returns the head event without removing it.
// Returns (nil, false) when the queue is empty.
func (q *deliveryQueue) TryPeek() (*event.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil, false
	}
	return q.events[0], true
}

// PopHead removes the head event. Call only after TryPeek returned true,
// from the same consumer goroutine.
func (q *deliveryQueue) PopHead() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return
	}
	q.removeLocked(0)
}

// TryDequeueFirst removes and returns the first event satisfying pred,
// scanning from the head. Returns (nil, false) when none matches.
func (q *deliveryQueue) TryDequeueFirst(pred func(*event.Event) bool) (*event.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, ev := range q.events {
		if pred(ev) {
			q.removeLocked(i)
			return ev, true
		}
	}
	return nil, false
}

// removeLocked deletes the element at i preserving order.
// CRITICAL: the tail slot is nilled out so the backing array does not
// retain the event past consumption.
func (q *deliveryQueue) removeLocked(i int) {
	copy(q.events[i:], q.events[i+1:])
	q.events[len(q.events)-1] = nil
	q.events = q.events[:len(q.events)-1]
}

// Wake pokes the signal channel so a waiting consumer re-checks the queue.
// Used when readiness may have changed without a new event arriving.
func (q *deliveryQueue) Wake() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.wakeLocked()
}

// wakeLocked performs a non-blocking signal send; the one-slot buffer
// coalesces repeated wakeups.
func (q *deliveryQueue) wakeLocked() {
	if q.closed {
		return
	}
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Wait returns a channel that signals when the consumer should re-check:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Wait():
//	    // try again
//	}
func (q *deliveryQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *deliveryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close marks the queue closed and wakes all waiters by closing the signal
// channel. Enqueue returns false afterwards; already-queued events remain
// consumable.
func (q *deliveryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// IsClosed reports whether Close has been called.
func (q *deliveryQueue) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
