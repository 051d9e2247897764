package hub

import "sync/atomic"

// Clock is the monotonic logical clock for delivery ordering.
//
// Every delivered event is stamped with a strictly increasing seq number.
// Ordering decisions and journal reads key on seq; wall-clock timestamps on
// events are informational only.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the hub's single-writer loop means only one goroutine normally
// calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used by replay to resume from the last journaled position.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
