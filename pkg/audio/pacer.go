package audio

import (
	"runtime"
	"time"
)

// Pacer spaces sample writes at a fixed period.
type Pacer interface {
	// Reset marks the start of a buffer.
	Reset()
	// Wait blocks until sample n of the current buffer is due.
	Wait(n int)
}

// DeadlinePacer paces against absolute deadlines measured from Reset, so
// oversleeping on one sample is recovered on the next ones instead of
// accumulating drift. Remaining waits shorter than SpinThreshold are
// busy-waited because the scheduler cannot sleep that precisely.
type DeadlinePacer struct {
	Period        time.Duration
	SpinThreshold time.Duration

	start time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

// NewDeadlinePacer creates a pacer for the given sample period.
func NewDeadlinePacer(period, spinThreshold time.Duration) *DeadlinePacer {
	return &DeadlinePacer{
		Period:        period,
		SpinThreshold: spinThreshold,
		now:           time.Now,
		sleep:         time.Sleep,
	}
}

// Reset implements Pacer.
func (p *DeadlinePacer) Reset() {
	p.start = p.now()
}

// Wait implements Pacer.
func (p *DeadlinePacer) Wait(n int) {
	deadline := p.start.Add(time.Duration(n) * p.Period)
	for {
		remaining := deadline.Sub(p.now())
		if remaining <= 0 {
			return
		}
		if remaining > p.SpinThreshold {
			p.sleep(remaining - p.SpinThreshold)
			continue
		}
		// Yield so the sampling task keeps running on cooperative schedulers.
		runtime.Gosched()
	}
}
