package harness

import (
	"fmt"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/extension"
	"github.com/solaria-labs/herald/internal/state"
)

// TraceEvent is one entry in a scenario trace. Kind is "publish" for
// shared-state changes and "delivery" for event deliveries.
type TraceEvent struct {
	Kind string `json:"kind"`

	// Publish fields.
	Owner   string `json:"owner,omitempty"`
	Version int64  `json:"version,omitempty"`
	Status  string `json:"status,omitempty"`

	// Delivery fields.
	Seq         int64  `json:"seq,omitempty"`
	EventID     string `json:"eventId,omitempty"`
	EventType   string `json:"eventType,omitempty"`
	EventSource string `json:"eventSource,omitempty"`
	Disposition string `json:"disposition,omitempty"`
	Reason      string `json:"reason,omitempty"`

	// Outbound fields, set when the delivery dispatched an event.
	OutboundID     string         `json:"outboundId,omitempty"`
	OutboundType   string         `json:"outboundType,omitempty"`
	OutboundSource string         `json:"outboundSource,omitempty"`
	OutboundData   map[string]any `json:"outboundData,omitempty"`
}

// Result holds the outcome of running one scenario.
type Result struct {
	// ScenarioName echoes the scenario's name.
	ScenarioName string

	// Pass is true when every expectation held.
	Pass bool

	// Trace records every publish and delivery in order.
	Trace []TraceEvent

	// Dispatched counts outbound events.
	Dispatched int

	// Paused is the pause state after the final drain.
	Paused bool

	// Held counts undelivered events after the final drain.
	Held int

	// Errors lists expectation failures. Empty when Pass is true.
	Errors []string
}

// NewResult creates an empty passing result for a scenario.
func NewResult(name string) *Result {
	return &Result{
		ScenarioName: name,
		Pass:         true,
		Trace:        []TraceEvent{},
		Errors:       []string{},
	}
}

// AddError records an expectation failure and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// addPublish appends a shared-state change to the trace.
func (r *Result) addPublish(snap *state.Snapshot) {
	r.Trace = append(r.Trace, TraceEvent{
		Kind:    "publish",
		Owner:   snap.Owner,
		Version: snap.Version,
		Status:  string(snap.Status),
	})
}

// addDelivery appends a delivery outcome to the trace.
func (r *Result) addDelivery(seq int64, ev *event.Event, outcome extension.Outcome) {
	te := TraceEvent{
		Kind:        "delivery",
		Seq:         seq,
		EventID:     ev.ID,
		EventType:   string(ev.Type),
		EventSource: string(ev.Source),
		Disposition: string(outcome.Disposition),
		Reason:      outcome.Reason,
	}
	if out := outcome.Outbound; out != nil {
		te.OutboundID = out.ID
		te.OutboundType = string(out.Type)
		te.OutboundSource = string(out.Source)
		te.OutboundData = out.Data
	}
	r.Trace = append(r.Trace, te)
}

// DropReasons returns the reason codes of dropped deliveries, in trace
// order. Returns an empty slice when nothing dropped.
func (r *Result) DropReasons() []string {
	reasons := []string{}
	for _, te := range r.Trace {
		if te.Kind == "delivery" && te.Disposition == string(extension.DispositionDropped) {
			reasons = append(reasons, te.Reason)
		}
	}
	return reasons
}
