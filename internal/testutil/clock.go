package testutil

import "sync"

// ManualClock is a simulation clock that only moves when told to.
//
// Unlike engine.Clock, ManualClock can be set backwards and reset, which
// lets one test drive a repertoire through several unlock windows.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock creates a clock at tick start.
func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start}
}

// Current returns the current tick.
//
// Implements repertoire.Clock.
func (c *ManualClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by n ticks and returns the new tick.
func (c *ManualClock) Advance(n int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += n
	return c.now
}

// Set moves the clock to tick.
func (c *ManualClock) Set(tick int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = tick
}

// Reset moves the clock back to 0.
func (c *ManualClock) Reset() {
	c.Set(0)
}
