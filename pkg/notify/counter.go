package notify

import (
	"context"
	"sync/atomic"
)

// Counter is a counting signal: every Give is honoured by exactly one Take,
// no matter how many accumulate before the consumer gets to them.
type Counter struct {
	count atomic.Uint32
	ch    chan struct{}
}

// NewCounter creates a Counter with nothing pending.
func NewCounter() *Counter {
	return &Counter{ch: make(chan struct{}, 1)}
}

// Give adds one pending signal without blocking.
func (c *Counter) Give() {
	c.count.Add(1)
	select {
	case c.ch <- struct{}{}:
	default:
	}
}

// Take blocks until at least one signal is pending and consumes one.
func (c *Counter) Take(ctx context.Context) error {
	for {
		if c.tryTake() {
			return nil
		}
		select {
		case <-c.ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Pending returns the number of signals given but not yet taken.
func (c *Counter) Pending() int {
	return int(c.count.Load())
}

func (c *Counter) tryTake() bool {
	for {
		n := c.count.Load()
		if n == 0 {
			return false
		}
		if c.count.CompareAndSwap(n, n-1) {
			return true
		}
	}
}
