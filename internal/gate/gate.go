// Package gate holds the readiness predicate the host consults before
// handing an event to the extension.
package gate

import (
	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/state"
)

// Ready reports whether ev can be processed given the Configuration and
// Identity snapshots resolved at the event. The answer is false unless BOTH
// snapshots carry published data; pending or absent upstream state is a
// normal condition, not an error.
//
// Ready is a pure predicate. The host may re-evaluate it for the same event
// any number of times as snapshots evolve; since snapshot versions only move
// forward, an event that was ready stays ready until it is processed.
func Ready(ev *event.Event, config, identity *state.Snapshot) bool {
	return config.IsSet() && identity.IsSet()
}
