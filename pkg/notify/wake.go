// Package notify provides the signalling primitives that connect the timer
// callback and the long-lived tasks: a coalescing wake, a counting signal and
// a single-slot latest-wins mailbox.
//
// Every Post/Give is non-blocking and may be called from a timer callback.
// Every Wait/Take blocks until signalled or the context is done.
package notify

import (
	"context"
	"sync/atomic"
)

// Wake is a coalescing wake-up. Posts made while a wake is already pending
// collapse into that wake and are counted as overruns.
type Wake struct {
	ch       chan struct{}
	overruns atomic.Uint32
}

// NewWake creates a Wake with no pending post.
func NewWake() *Wake {
	return &Wake{ch: make(chan struct{}, 1)}
}

// Post signals the waiter without blocking.
func (w *Wake) Post() {
	select {
	case w.ch <- struct{}{}:
	default:
		w.overruns.Add(1)
	}
}

// Wait blocks until a post is pending and consumes it.
func (w *Wake) Wait(ctx context.Context) error {
	select {
	case <-w.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Overruns returns how many posts were coalesced because the waiter had not
// yet consumed the previous one.
func (w *Wake) Overruns() uint32 {
	return w.overruns.Load()
}
