package extension

import (
	"context"
	"log/slog"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/gate"
	"github.com/solaria-labs/herald/internal/privacy"
	"github.com/solaria-labs/herald/internal/state"
	"github.com/solaria-labs/herald/internal/transform"
)

// Extension identity reported to the host.
const (
	Name    = "com.solaria.herald"
	Version = "1.0.0"
)

// Dispatcher receives outbound events for upload. The host owns transport;
// dispatch must not block on network I/O.
type Dispatcher interface {
	Dispatch(ev *event.Event)
}

// Scheduler pauses and resumes event delivery to this extension.
// Both signals are idempotent: stopping a stopped queue is a no-op.
type Scheduler interface {
	StopEvents()
	StartEvents()
}

// Disposition classifies what HandleEvent did with an event.
type Disposition string

const (
	// DispositionDispatched means an outbound event went to the Dispatcher.
	DispositionDispatched Disposition = "dispatched"
	// DispositionDropped means a branch matched but the event could not ship.
	DispositionDropped Disposition = "dropped"
	// DispositionIgnored means no branch wanted the event.
	DispositionIgnored Disposition = "ignored"
	// DispositionHandled means the event changed extension state
	// (configuration changes) without producing output.
	DispositionHandled Disposition = "handled"
)

// Outcome reports what HandleEvent did with one event. The hub journals
// outcomes; tests assert on them.
type Outcome struct {
	Disposition Disposition
	Reason      string       // drop code when Disposition is dropped
	Outbound    *event.Event // non-nil when Disposition is dispatched
}

// Extension wires the transformer and the privacy reactor to the host.
//
// Thread-safety: the host delivers events from a single goroutine, which is
// the only concurrency contract this type assumes.
type Extension struct {
	dispatcher Dispatcher
	scheduler  Scheduler
	ledger     *privacy.Ledger
	processor  *transform.Processor
}

// New creates an Extension. The ledger starts at unknown consent; nothing
// pauses until the first configuration change says so.
func New(dispatcher Dispatcher, scheduler Scheduler, processor *transform.Processor) *Extension {
	return &Extension{
		dispatcher: dispatcher,
		scheduler:  scheduler,
		ledger:     privacy.NewLedger(),
		processor:  processor,
	}
}

// Ledger exposes the consent ledger for the host's debugging surfaces.
func (x *Extension) Ledger() *privacy.Ledger {
	return x.ledger
}

// ReadyForEvent reports whether ev can be delivered yet. The host re-asks
// as snapshots evolve; a false answer defers the event, it never drops it.
func (x *Extension) ReadyForEvent(ev *event.Event, config, identity *state.Snapshot) bool {
	return gate.Ready(ev, config, identity)
}

// HandleEvent processes one delivered event.
//
// Configuration responses go to the privacy reactor; everything else goes
// through the transformer. The returned Outcome is for observability only —
// there is no failure path back to the host.
func (x *Extension) HandleEvent(ev *event.Event, config, identity *state.Snapshot) Outcome {
	if ev.Is(event.TypeConfiguration, event.SourceResponseContent) {
		x.onConfigurationChanged(ev)
		return Outcome{Disposition: DispositionHandled}
	}

	out, err := x.processor.Process(ev, config, identity)
	if err != nil {
		if drop, ok := transform.AsDrop(err); ok {
			slog.Default().Log(context.Background(), drop.Level(), "dropping event",
				"event", ev.ID, "code", string(drop.Code), "detail", drop.Message)
			return Outcome{Disposition: DispositionDropped, Reason: string(drop.Code)}
		}
		// The processor contract says this cannot happen; if it somehow
		// does, the stream must survive it.
		slog.Warn("unexpected processing error", "event", ev.ID, "error", err)
		return Outcome{Disposition: DispositionDropped, Reason: "INTERNAL"}
	}
	if out == nil {
		slog.Debug("event not for this extension", "event", ev.ID,
			"type", string(ev.Type), "source", string(ev.Source))
		return Outcome{Disposition: DispositionIgnored}
	}

	x.dispatcher.Dispatch(out)
	slog.Debug("dispatched outbound event", "event", ev.ID, "outbound", out.ID)
	return Outcome{Disposition: DispositionDispatched, Outbound: out}
}
