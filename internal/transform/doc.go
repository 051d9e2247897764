// Package transform turns gated inbound events plus the two upstream
// snapshots into zero or one outbound edge event.
//
// # Branches
//
// The processor routes on the (type, source) pair:
//
//   - genericIdentity / requestContent → push token registration
//   - messaging / requestContent       → notification interaction tracking
//
// Anything else is not for this extension and returns (nil, nil).
//
// # CRITICAL PATTERNS
//
// 1. Drops Are Values, Never Failures
//
// Every reason an event produces no outbound payload is a *Drop carrying a
// reason code and a log level class. Expected incompleteness (no token yet,
// consent withheld) logs at debug; malformed input logs at warn. Nothing in
// this package can stop the event stream.
//
// 2. Decode Once at Branch Entry
//
// Each branch decodes the raw payload into a typed record exactly once, at
// entry. Everything past the decode works with typed fields; no map access
// is scattered through branch logic.
//
// 3. Fresh Consent Reads
//
// The push branch checks consent from the Configuration snapshot resolved at
// the event, not from any remembered flag. An event that waited in the queue
// across a consent change is judged by the state that accompanied it.
//
// 4. Idempotence
//
// Process is referentially transparent modulo the outbound event ID: the
// same event with the same snapshots renders a structurally identical
// payload. The journal's replay check depends on this.
package transform
