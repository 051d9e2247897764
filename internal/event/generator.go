package event

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces event identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 event IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, making IDs
// sortable by creation time. This is helpful when reading journal dumps.
//
// Uses github.com/google/uuid package for RFC 4122 compliant UUIDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined event IDs for testing.
//
// This enables deterministic test execution: tests provide a known sequence
// of IDs and verify exact output.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedGenerator("evt-1", "evt-2")
//	gen.Generate() // "evt-1"
//	gen.Generate() // "evt-2"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
//
// Panics if all ids have been consumed. This is a fail-fast approach to
// catch test misconfiguration (test produced more events than expected).
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// SequentialGenerator produces readable zero-padded IDs ("evt-00000001").
//
// Unlike FixedGenerator it never exhausts, which suits scenario runs where
// the number of outbound events is not known up front. Golden traces stay
// byte-identical across runs.
//
// Thread-safety: SequentialGenerator is safe for concurrent use via
// internal mutex.
type SequentialGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialGenerator creates a generator with the given ID prefix.
// An empty prefix defaults to "evt".
func NewSequentialGenerator(prefix string) *SequentialGenerator {
	if prefix == "" {
		prefix = "evt"
	}
	return &SequentialGenerator{prefix: prefix}
}

// Generate returns the next ID in the sequence, starting at 1.
func (g *SequentialGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%08d", g.prefix, g.n)
}
