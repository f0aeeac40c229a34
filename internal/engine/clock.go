package engine

import "sync/atomic"

// Clock is the simulation clock, in ticks.
//
// The engine is the only writer: Advance is called from the Run loop when an
// Advance event is processed. Readers (the repertoire Env, observers in the
// same process, tests) may call Current from any goroutine.
type Clock struct {
	ticks atomic.Int64
}

// NewClock creates a clock at tick 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock at a specific tick.
// Used to resume a world whose time was saved elsewhere.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.ticks.Store(start)
	return c
}

// Current returns the current tick.
func (c *Clock) Current() int64 {
	return c.ticks.Load()
}

// Advance moves the clock forward by n ticks and returns the new tick.
// n must not be negative; the engine rejects negative advances before
// calling it.
func (c *Clock) Advance(n int64) int64 {
	return c.ticks.Add(n)
}
