package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/extension"
	"github.com/solaria-labs/herald/internal/state"
)

// Hosted is the surface the hub drives. *extension.Extension satisfies it.
type Hosted interface {
	ReadyForEvent(ev *event.Event, config, identity *state.Snapshot) bool
	HandleEvent(ev *event.Event, config, identity *state.Snapshot) extension.Outcome
}

// OutcomeObserver sees every delivery with the snapshots it was judged by.
// The journal hangs off this hook; so do harness traces.
type OutcomeObserver func(seq int64, ev *event.Event, config, identity *state.Snapshot, outcome extension.Outcome)

// Hub is the single-writer delivery loop.
//
// Thread-safety model:
//   - Enqueue(), SetSharedState(), StopEvents(), StartEvents(): any goroutine
//   - Run(): exactly one goroutine; Drain(): same goroutine discipline
//   - Dispatched(): any goroutine
type Hub struct {
	queue  *deliveryQueue
	states *state.Store
	clock  *Clock
	paused atomic.Bool

	ext      Hosted
	observer OutcomeObserver

	mu         sync.Mutex
	dispatched []*event.Event
}

// Option configures a Hub.
type Option func(*Hub)

// WithOutcomeObserver registers the delivery hook. One observer is enough
// for current callers; the last registration wins.
func WithOutcomeObserver(fn OutcomeObserver) Option {
	return func(h *Hub) { h.observer = fn }
}

// WithClock replaces the delivery clock. Used by replay to resume sequence
// numbers from the journal.
func WithClock(c *Clock) Option {
	return func(h *Hub) { h.clock = c }
}

// New creates a Hub with an empty queue and state store. Attach an
// extension before calling Run or Drain.
func New(opts ...Option) *Hub {
	h := &Hub{
		queue:  newDeliveryQueue(),
		states: state.NewStore(),
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach hosts the extension. Must be called exactly once before the first
// Run or Drain.
func (h *Hub) Attach(ext Hosted) error {
	if h.ext != nil {
		return fmt.Errorf("hub already hosts an extension")
	}
	h.ext = ext
	return nil
}

// States exposes the shared-state store for inspection.
func (h *Hub) States() *state.Store {
	return h.states
}

// Seq returns the last assigned delivery sequence number.
func (h *Hub) Seq() int64 {
	return h.clock.Current()
}

// Enqueue submits an event for delivery.
// Thread-safe: may be called from any goroutine.
// Returns false if the hub has been stopped.
func (h *Hub) Enqueue(ev *event.Event) bool {
	return h.queue.Enqueue(ev)
}

// SetSharedState publishes a new snapshot version for owner and wakes the
// loop: the head event's readiness may just have changed.
func (h *Hub) SetSharedState(owner string, status state.Status, data map[string]any) *state.Snapshot {
	snap := h.states.Publish(owner, status, data)
	slog.Debug("shared state published",
		"owner", owner, "version", snap.Version, "status", string(status))
	h.queue.Wake()
	return snap
}

// StopEvents pauses delivery. Queued events are held, not dropped.
// Implements extension.Scheduler; idempotent.
func (h *Hub) StopEvents() {
	if h.paused.CompareAndSwap(false, true) {
		slog.Debug("event delivery paused")
	}
}

// StartEvents resumes delivery and wakes the loop.
// Implements extension.Scheduler; idempotent.
func (h *Hub) StartEvents() {
	if h.paused.CompareAndSwap(true, false) {
		slog.Debug("event delivery resumed")
	}
	h.queue.Wake()
}

// Paused reports whether delivery is currently paused.
func (h *Hub) Paused() bool {
	return h.paused.Load()
}

// Dispatch records an outbound event in arrival order.
// Implements extension.Dispatcher. The production host uploads here; the
// reference hub keeps the event for assertions and the journal.
func (h *Hub) Dispatch(ev *event.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dispatched = append(h.dispatched, ev)
}

// Dispatched returns the outbound events captured so far, in order.
// Returns an empty slice instead of nil when nothing dispatched.
func (h *Hub) Dispatched() []*event.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*event.Event, len(h.dispatched))
	copy(out, h.dispatched)
	return out
}

// Pending returns how many accepted events have not been delivered yet.
func (h *Hub) Pending() int {
	return h.queue.Len()
}

// Drain delivers events until no further progress is possible: the queue is
// empty, the head event is not ready, or delivery is paused with no
// configuration event waiting. Returns the number of events delivered.
//
// CRITICAL: call from one goroutine only, never concurrently with Run.
func (h *Hub) Drain() int {
	n := 0
	for h.step() {
		n++
	}
	return n
}

// Run starts the delivery loop and blocks until the context is cancelled or
// Stop is called.
//
// CRITICAL: must be called from exactly ONE goroutine. All delivery and
// observer calls happen on it.
//
// ERROR HANDLING: delivery cannot fail — the extension absorbs bad input
// and reports it through outcomes — so the loop has no retry machinery.
func (h *Hub) Run(ctx context.Context) error {
	slog.Info("hub starting", "extension", extension.Name)

	for {
		if h.step() {
			continue
		}
		if h.queue.IsClosed() {
			slog.Info("hub stopping: queue closed")
			return nil
		}

		select {
		case <-ctx.Done():
			slog.Info("hub stopping: context cancelled")
			h.queue.Close()
			return ctx.Err()

		case <-h.queue.Wait():
			// Re-check the queue. When the queue closes this fires
			// immediately and the IsClosed check above ends the loop
			// after remaining deliverable events drain.
		}
	}
}

// Stop gracefully shuts down the hub. Run returns after draining whatever
// remains deliverable.
func (h *Hub) Stop() {
	h.queue.Close()
}

// step attempts exactly one delivery and reports whether it happened.
func (h *Hub) step() bool {
	if h.ext == nil {
		return false
	}

	if h.paused.Load() {
		// Only configuration events move while paused; the one that turns
		// consent back on must get through.
		ev, ok := h.queue.TryDequeueFirst(isConfigurationEvent)
		if !ok {
			return false
		}
		h.deliver(ev)
		return true
	}

	ev, ok := h.queue.TryPeek()
	if !ok {
		return false
	}

	config := h.states.Get(state.OwnerConfiguration)
	identity := h.states.Get(state.OwnerIdentity)
	if !h.ext.ReadyForEvent(ev, config, identity) {
		// Hold the line: later events wait behind the head so processing
		// order always equals arrival order.
		slog.Debug("deferring event: upstream state not ready", "event", ev.ID)
		return false
	}

	h.queue.PopHead()
	h.deliverWith(ev, config, identity)
	return true
}

func (h *Hub) deliver(ev *event.Event) {
	config := h.states.Get(state.OwnerConfiguration)
	identity := h.states.Get(state.OwnerIdentity)
	h.deliverWith(ev, config, identity)
}

// deliverWith hands one event to the extension with the snapshots it was
// judged by, then reports the outcome to the observer.
func (h *Hub) deliverWith(ev *event.Event, config, identity *state.Snapshot) {
	seq := h.clock.Next()
	slog.Debug("delivering event",
		"seq", seq, "event", ev.ID, "type", string(ev.Type), "source", string(ev.Source))

	outcome := h.ext.HandleEvent(ev, config, identity)

	if h.observer != nil {
		h.observer(seq, ev, config, identity, outcome)
	}
}

func isConfigurationEvent(ev *event.Event) bool {
	return ev.Type == event.TypeConfiguration
}
