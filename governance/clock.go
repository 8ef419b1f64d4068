package governance

import (
	"sync"
	"time"
)

// Clock yields the block timestamp in seconds.
type Clock interface {
	Now() uint64
}

type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock is a settable clock for simulations and tests. Block time
// starts at 1; timestamp 0 is reserved for "nothing pending".
type ManualClock struct {
	mu  sync.Mutex
	now uint64
}

func NewManualClock(start uint64) *ManualClock {
	return &ManualClock{now: max(start, 1)}
}

func (c *ManualClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(ts uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = max(ts, 1)
}

func (c *ManualClock) Advance(secs uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += secs
	return c.now
}
