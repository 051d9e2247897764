// Package journal provides durable storage for delivered events and their
// outcomes, using SQLite in WAL mode.
//
// Every delivery is recorded together with the exact Configuration and
// Identity snapshots it was judged by, so a later replay can rerun the
// transform against the same inputs and compare results. The journal only
// stores and reads; replay orchestration lives in the harness.
//
// # CRITICAL PATTERNS
//
// 1. Idempotent Appends
//
// All writes use ON CONFLICT DO NOTHING. Recording the same delivery or
// outcome twice is silently ignored, so a crash between "record" and "ack"
// can always be resolved by recording again.
//
// 2. Deterministic Reads
//
// Every multi-row read orders by seq ASC, id COLLATE BINARY ASC. Two reads
// of the same journal produce byte-identical iteration order, which replay
// comparison depends on.
//
// 3. Canonical JSON at Rest
//
// Payloads and snapshots are stored as RFC 8785 canonical JSON TEXT, and
// outbound payloads additionally as a domain-separated SHA-256 hash.
// Replay equality checks compare hashes, never re-parsed structures.
package journal
