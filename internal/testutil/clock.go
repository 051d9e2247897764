// Package testutil provides deterministic stand-ins for the injectable
// pieces of the runtime: the timestamp clock and the host app identity.
package testutil

import (
	"sync"
	"time"
)

// Clock is a frozen wall clock for deterministic timestamps.
//
// Unlike the system clock it advances only when told to, so the same
// scenario produces byte-identical event records and golden traces.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at the given instant.
func NewClock(at time.Time) *Clock {
	return &Clock{now: at}
}

// Now returns the frozen instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to an absolute instant. Used for test reuse; nothing
// stops t from being earlier than the current instant.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
