package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a fake time source for tests: every reading
// advances the clock by a fixed step.
//
// Injected as the loop's time source it makes elapsed figures in reports
// and golden traces byte-stable: the same scenario always observes the
// same readings, regardless of host speed.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	at    time.Time
	step  time.Duration
}

// NewDeterministicClock creates a clock that returns start on the first
// reading and advances by step after every reading.
func NewDeterministicClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start, at: start, step: step}
}

// Now returns the current reading and advances the clock by one step.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.at
	c.at = c.at.Add(c.step)
	return t
}

// Reset rewinds the clock to its start time for test reuse.
// After Reset, the next reading returns the start time again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.start
}
