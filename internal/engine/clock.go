package engine

import "sync/atomic"

// Clock is a monotonic logical clock. Every processed event is stamped
// with a strictly increasing seq number; wall-clock time is never used
// for ordering.
//
// Thread-safety: atomic; the single-writer loop is the only caller in
// practice.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a specific sequence number.
// Used by replay to continue a journaled session.
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
