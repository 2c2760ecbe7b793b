// Package indicator implements the visual feedback task: one fixed-length
// colour pulse per hit signal.
package indicator

import (
	"context"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/itohio/drumpads/pkg/hal"
	"github.com/itohio/drumpads/pkg/notify"
)

const (
	// DefaultDwell is how long the indicator stays lit per hit.
	DefaultDwell = 125 * time.Millisecond
)

// Red is the default alert colour.
var Red = color.RGBA{R: 255, A: 255}

// State is the flasher's position in its pulse cycle.
type State uint32

const (
	Waiting State = iota
	On
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case On:
		return "ON"
	default:
		return "UNKNOWN"
	}
}

// Stats holds flasher counters.
type Stats struct {
	Pulses      uint32
	WriteErrors uint32
}

// Flasher lights the indicator once for every signal taken from its counter.
// Pulses are strictly sequential: a hit arriving while the indicator is lit
// produces another full pulse after the current one.
type Flasher struct {
	led    hal.Indicator
	hits   *notify.Counter
	colour color.RGBA
	dwell  time.Duration

	state       atomic.Uint32
	pulses      atomic.Uint32
	writeErrors atomic.Uint32

	sleep func(context.Context, time.Duration) error
}

// New creates a Flasher. Zero dwell selects DefaultDwell.
func New(led hal.Indicator, hits *notify.Counter, colour color.RGBA, dwell time.Duration) *Flasher {
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	return &Flasher{
		led:    led,
		hits:   hits,
		colour: colour,
		dwell:  dwell,
		sleep:  sleepCtx,
	}
}

// Run serves hit signals until ctx is done.
func (f *Flasher) Run(ctx context.Context) error {
	for {
		if err := f.hits.Take(ctx); err != nil {
			return err
		}
		if err := f.Pulse(ctx); err != nil {
			return err
		}
	}
}

// Pulse sets the colour, holds it for the dwell time and clears. The
// indicator is cleared even when ctx ends during the dwell.
func (f *Flasher) Pulse(ctx context.Context) error {
	f.state.Store(uint32(On))
	if err := f.led.SetAll(f.colour); err != nil {
		f.writeErrors.Add(1)
	}

	err := f.sleep(ctx, f.dwell)

	if cerr := f.led.Clear(); cerr != nil {
		f.writeErrors.Add(1)
	}
	f.state.Store(uint32(Waiting))
	f.pulses.Add(1)
	return err
}

// State returns the current state.
func (f *Flasher) State() State {
	return State(f.state.Load())
}

// Stats returns a snapshot of the counters.
func (f *Flasher) Stats() Stats {
	return Stats{
		Pulses:      f.pulses.Load(),
		WriteErrors: f.writeErrors.Load(),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
