package ledger

import (
	"sync"
	"time"
)

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock returns a settable instant. Tests drive proposal expiry with it.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(unixSeconds int64) *FixedClock {
	return &FixedClock{now: time.Unix(unixSeconds, 0)}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(unixSeconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Unix(unixSeconds, 0)
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
