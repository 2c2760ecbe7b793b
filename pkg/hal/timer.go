package hal

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimerRunning is returned when Start is called on a running timer.
	ErrTimerRunning = errors.New("timer already running")
	// ErrInvalidPeriod is returned for non-positive timer periods.
	ErrInvalidPeriod = errors.New("invalid timer period")
)

var _ Timer = (*TickerTimer)(nil)

// TickerTimer is a Timer driven by a goroutine and time.Ticker. It stands in
// for a hardware timer on hosts and on boards without a timer driver.
type TickerTimer struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewTickerTimer creates a stopped TickerTimer.
func NewTickerTimer() *TickerTimer {
	return &TickerTimer{}
}

// Start begins invoking fn every period.
func (t *TickerTimer) Start(period time.Duration, fn func()) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return ErrTimerRunning
	}

	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(period, fn, t.stop, t.done)

	return nil
}

// Stop halts the timer and waits for the callback goroutine to exit.
// Stopping a stopped timer is a no-op.
func (t *TickerTimer) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (t *TickerTimer) run(period time.Duration, fn func(), stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fn()
		}
	}
}
