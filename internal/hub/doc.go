// Package hub is the reference host runtime: a single-writer event loop
// that feeds a hosted extension in FIFO order, gated by its readiness
// predicate and its scheduler signals.
//
// The production host is platform code outside this repository. The hub
// exists so the extension can be exercised end to end — in tests, in the
// scenario harness, and under the simulate command — against the same
// contract the real host honors.
//
// # CRITICAL PATTERNS
//
// 1. Single-Writer Loop
//
// All delivery happens in one goroutine (Run, or the caller of Drain).
// Enqueue and SetSharedState are safe from any goroutine; they only append
// and signal. Determinism comes from the single consumer, not from locks
// around processing.
//
// 2. Ordered, Readiness-Gated Delivery
//
// Delivery halts at the FIRST event whose readiness predicate says no and
// retries that same event when shared state changes. Later events wait
// behind it regardless of their own readiness, so processing order always
// equals arrival order.
//
// 3. Pause Without Loss
//
// StopEvents holds every queued event in place. Configuration events are
// the one exception — they bypass the pause gate, because the event that
// restores opted-in consent must be deliverable while paused or nothing
// ever resumes. Held events keep their relative order across the pause.
package hub
