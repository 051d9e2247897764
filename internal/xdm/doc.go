// Package xdm builds the outbound experience payloads and provides the
// deterministic JSON plumbing under them.
//
// # Payload Builders
//
// BuildPushRegistration renders the profile payload for a push token sync.
// BuildTracking renders the experience event envelope for a notification
// interaction. Builders are pure renderers: they validate nothing and take
// already-vetted inputs from the transform layer.
//
// # CRITICAL PATTERNS
//
// 1. Canonical JSON for Identity
//
// MarshalCanonical is the ONLY serialization used for payload hashing and
// golden traces. Keys sort by UTF-16 code units (RFC 8785), strings are NFC
// normalized, and HTML characters are not escaped. Unlike a hashing-only
// canonicalizer this one must accept the full JSON value domain — tracking
// payloads are caller-supplied — so null and floats encode instead of
// erroring.
//
// 2. Last-Write-Wins Merge
//
// MergeOverwrite is the single merge primitive. It recurses wherever both
// sides hold a map and otherwise takes the overlay value, arrays included.
// Neither input is mutated; the result shares no structure with either.
//
// 3. Content-Addressed Payloads
//
// PayloadHash computes SHA-256 over canonical bytes with a domain prefix.
// Identical payloads hash identically regardless of map iteration order,
// which is what the journal's replay check and the idempotency tests key on.
package xdm
