package testutil

import "sync"

// DeterministicClock is a phase.Clock for tests: every Now() returns the
// current reading and advances it by a fixed step, so consecutive samples
// are distinct, ordered, and identical across runs. That stability is what
// golden trace comparison relies on.
//
// Thread-safe via internal mutex, although scheduler tests are
// single-threaded by design.
type DeterministicClock struct {
	mu   sync.Mutex
	now  int64
	step int64
}

// NewDeterministicClock creates a clock starting at 0 that advances by
// step nanoseconds per reading. The first Now() returns 0.
func NewDeterministicClock(step int64) *DeterministicClock {
	return &DeterministicClock{step: step}
}

// Now returns the current reading and advances the clock by one step.
func (c *DeterministicClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.now
	c.now += c.step
	return v
}

// Advance moves the clock forward by d nanoseconds without producing a
// reading.
func (c *DeterministicClock) Advance(d int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Reset rewinds the clock to 0 for test reuse.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = 0
}
