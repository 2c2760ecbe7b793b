package notify

import (
	"context"
	"sync"
	"sync/atomic"
)

// Mailbox is a single-slot holder where a new Post replaces any value that has
// not been taken yet. It never holds more than one pending value.
type Mailbox[T any] struct {
	mu    sync.Mutex
	value T
	full  bool
	ch    chan struct{}

	overwritten atomic.Uint32
}

// NewMailbox creates an empty Mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan struct{}, 1)}
}

// Post stores v, discarding any unread value, and wakes the consumer.
func (m *Mailbox[T]) Post(v T) {
	m.mu.Lock()
	if m.full {
		m.overwritten.Add(1)
	}
	m.value = v
	m.full = true
	m.mu.Unlock()

	select {
	case m.ch <- struct{}{}:
	default:
	}
}

// Take blocks until a value is present, then returns it and empties the slot.
func (m *Mailbox[T]) Take(ctx context.Context) (T, error) {
	for {
		if v, ok := m.TryTake(); ok {
			return v, nil
		}
		select {
		case <-m.ch:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// TryTake returns the pending value, if any, without blocking.
func (m *Mailbox[T]) TryTake() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.value
	if !m.full {
		return v, false
	}
	var zero T
	m.value = zero
	m.full = false
	return v, true
}

// Overwritten returns how many posted values were replaced before being taken.
func (m *Mailbox[T]) Overwritten() uint32 {
	return m.overwritten.Load()
}
