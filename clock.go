package phase

import "time"

// Clock supplies the monotonic timestamps stamped on system state around
// each invocation. Implementations must be non-decreasing.
//
// The default clock reads the process monotonic clock. Tests inject
// testutil.DeterministicClock for reproducible timestamps.
type Clock interface {
	// Now returns nanoseconds elapsed on a monotonic timeline. The origin
	// is implementation-defined; only differences are meaningful.
	Now() int64
}

// monotonicClock measures elapsed time from its construction instant,
// which rides time.Time's monotonic reading and never steps backwards.
type monotonicClock struct {
	base time.Time
}

func newMonotonicClock() *monotonicClock {
	return &monotonicClock{base: time.Now()}
}

func (c *monotonicClock) Now() int64 {
	return time.Since(c.base).Nanoseconds()
}
