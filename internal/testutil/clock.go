package testutil

import "sync"

// DeterministicClock is a stepping millisecond clock for tests.
//
// Each call to NowMs returns the current reading and then advances it by
// the configured step, so entries appended in sequence get predictable,
// evenly spaced timestamps. It satisfies history.Clock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start int64
	step  int64
	now   int64
}

// NewDeterministicClock creates a clock whose first reading is start and
// which advances by step after every reading.
func NewDeterministicClock(start, step int64) *DeterministicClock {
	return &DeterministicClock{start: start, step: step, now: start}
}

// NowMs returns the current reading and advances the clock.
func (c *DeterministicClock) NowMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now += c.step
	return now
}

// Peek returns the next reading without advancing.
func (c *DeterministicClock) Peek() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by ms without producing a reading.
func (c *DeterministicClock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
}

// Reset returns the clock to its start reading.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
