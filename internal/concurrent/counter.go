package concurrent

import (
	"sync/atomic"
)

// Counter is a synchronous counter for tracking the progress of concurrent work.
type Counter struct {
	count  uint64
	failed uint64
	total  int
}

// NewCounter creates a new counter for the expected number of events.
func NewCounter(total int) *Counter {
	return &Counter{total: total}
}

// Track increments the counter by one, counting the failures separately.
func (c *Counter) Track(err error) int {
	if err != nil {
		atomic.AddUint64(&c.failed, 1)
	}
	return int(atomic.AddUint64(&c.count, 1))
}

// Get returns the current count.
func (c *Counter) Get() int {
	return int(atomic.LoadUint64(&c.count))
}

// Failed returns the number of failed events.
func (c *Counter) Failed() int {
	return int(atomic.LoadUint64(&c.failed))
}

// Total returns the expected number of events.
func (c *Counter) Total() int {
	return c.total
}
