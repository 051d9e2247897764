// Package harness runs declarative scenarios against a real hub and
// extension, producing deterministic traces for golden comparison and
// structured results for assertions.
//
// A scenario is a YAML file: a list of steps (publish shared state, enqueue
// an event) plus optional expectations on the outcome. Every run wires a
// fresh hub, a fresh extension, a frozen clock, and sequential event IDs,
// so the same scenario always produces byte-identical traces.
//
// The harness also owns replay: rerunning journaled deliveries through a
// fresh extension and comparing outcomes against what the journal recorded.
// The journal package stores; this package orchestrates.
//
// # CRITICAL PATTERNS
//
// 1. Determinism by Construction
//
// No wall clocks, no random IDs. The clock is frozen at a fixed epoch and
// advances one second per step; event IDs are sequential. Golden files stay
// stable across machines and years.
//
// 2. Drain Between Steps
//
// Each step is followed by a full drain, so pause, resume, and readiness
// deferrals play out exactly as they would between host callbacks. A held
// event stays held across steps until a later step unblocks it.
//
// 3. Canonical Traces
//
// Trace snapshots serialize through the same canonical JSON used for
// payload hashing. Golden comparison is byte comparison.
package harness
