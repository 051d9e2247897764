// Package state models the shared-state snapshots published by upstream
// components (Configuration, Identity) and a small versioned store over them.
//
// A snapshot is immutable once published: readers see a consistent view no
// matter how long processing is deferred. Versions increase monotonically
// per owner and the store keeps only the latest snapshot, which is exactly
// the readiness contract: once an owner reaches StatusSet it can be
// superseded by a newer version but never regresses to pending.
//
// The production host owns the real state registry; Store is the in-process
// equivalent used by the hub, the scenario harness, and tests.
package state
