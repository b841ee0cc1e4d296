package loop

import "sync/atomic"

// Clock stamps every pulled candidate with a strictly increasing
// sequence number, so anomaly logs and observer events order by
// position in the stream rather than by wall time. The same candidate
// stream always produces the same stamps.
//
// Safe for concurrent use, though the runner pulls from one goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next advances the clock and returns the new sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current reads the last issued sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
