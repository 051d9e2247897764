// Package extension is the pluggable unit the host runtime drives: the
// readiness gate, the privacy reactor, and the event transformer behind one
// narrow surface.
//
// # Host Contract
//
// The host calls ReadyForEvent before delivery and HandleEvent on delivery,
// passing the Configuration and Identity snapshots resolved at the event.
// The extension talks back through two injected interfaces: Dispatcher
// (outbound events for upload) and Scheduler (pause/resume delivery).
// Everything else — queueing, ordering, persistence, transport — belongs to
// the host.
//
// # CRITICAL PATTERNS
//
// 1. Never Fail the Stream
//
// HandleEvent returns an Outcome, not an error. Malformed input logs a
// warning, expected incompleteness logs debug, and in every case the host
// keeps delivering. One bad event cannot wedge the queue.
//
// 2. One Scheduling Side Effect
//
// The privacy reactor is the only code that touches the Scheduler. Any
// parsed consent other than opted-in pauses delivery; opted-in resumes it.
// Signals are idempotent from the host's point of view, so the reactor
// re-emits on every configuration change rather than tracking transitions.
package extension
