// Package event defines the immutable event record exchanged with the host
// runtime, plus the identifier and timestamp sources used to stamp new events.
//
// # Event Model
//
// Every event carries a type tag (the producing family) and a source tag (the
// intent within that family). The extension routes on the (type, source) pair
// and never mutates an event after construction.
//
// # CRITICAL PATTERNS
//
// 1. Immutability by Construction
//
// Factory.New copies the payload map it is given. Readers use the typed
// accessors (StringValue, BoolValue, MapValue) which fail softly: a missing
// key, a nil payload, and a wrong-typed value all return ok=false. Processing
// decisions never distinguish these cases.
//
// 2. Injectable Identity and Time
//
// Event IDs come from an IDGenerator and timestamps from a Clock, both
// injectable. Production uses UUIDv7 (time-sortable) and the wall clock;
// tests and golden traces use FixedGenerator / SequentialGenerator with a
// frozen clock so the same input produces byte-identical output.
package event
