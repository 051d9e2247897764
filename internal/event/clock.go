package event

import "time"

// Clock supplies event timestamps.
//
// Timestamps are informational: they travel with outbound payloads and the
// journal, but ordering decisions always use the hub's logical sequence,
// never wall clocks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
