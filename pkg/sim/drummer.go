package sim

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/itohio/drumpads/pkg/hal"
)

// Striker is anything that can be hit on a channel.
type Striker interface {
	Strike(ch hal.Channel, velocity float32) error
}

// Drummer strikes random pads at roughly Period intervals.
type Drummer struct {
	target   Striker
	channels []hal.Channel
	period   time.Duration
	rng      *rand.Rand

	// OnStrike, when set, is called after every strike.
	OnStrike func(ch hal.Channel, velocity float32)
}

// NewDrummer creates a Drummer. seed makes the pattern reproducible.
func NewDrummer(target Striker, channels []hal.Channel, period time.Duration, seed uint64) *Drummer {
	return &Drummer{
		target:   target,
		channels: channels,
		period:   period,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Run strikes until ctx is done. Intervals are jittered by up to half a
// period either way; velocity ranges over 0.3..1.
func (d *Drummer) Run(ctx context.Context) error {
	if d.period <= 0 || len(d.channels) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		wait := d.period/2 + time.Duration(d.rng.Int64N(int64(d.period)))
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		d.Strike()
	}
}

// Strike hits one random channel now.
func (d *Drummer) Strike() {
	ch := d.channels[d.rng.IntN(len(d.channels))]
	velocity := 0.3 + 0.7*d.rng.Float32()
	if err := d.target.Strike(ch, velocity); err != nil {
		return
	}
	if d.OnStrike != nil {
		d.OnStrike(ch, velocity)
	}
}
