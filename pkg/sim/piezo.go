// Package sim provides simulated peripherals for running a kit on a host: a
// piezo pad signal model behind hal.ADC, a speaker-backed hal.DAC and a
// logging hal.Indicator.
package sim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/hal"
)

// ErrUnknownChannel is returned when reading a channel with no pad attached.
var ErrUnknownChannel = errors.New("unknown ADC channel")

// Piezo models the voltage across a struck piezo disc: a rectified, decaying
// oscillation on top of a small noise floor.
type Piezo struct {
	PeakMV      float32
	NoiseMV     float32
	ResonanceHz float32
	Decay       time.Duration

	struck   time.Time
	velocity float32
}

// NewPiezo creates a Piezo from the mock configuration.
func NewPiezo(cfg config.MockConfig) *Piezo {
	return &Piezo{
		PeakMV:      float32(cfg.PeakMV),
		NoiseMV:     float32(cfg.NoiseMV),
		ResonanceHz: float32(cfg.ResonanceHz),
		Decay:       cfg.DecayTime,
	}
}

// Strike excites the piezo at time at. Velocity is clamped to 0..1.
func (p *Piezo) Strike(at time.Time, velocity float32) {
	p.struck = at
	p.velocity = math32.Max(0, math32.Min(1, velocity))
}

// MilliVolts returns the output at time at. Output is never negative.
func (p *Piezo) MilliVolts(at time.Time) float32 {
	t := float32(at.UnixNano()%int64(time.Hour)) * 1e-9
	noise := (math32.Sin(t*7919) + math32.Cos(t*6133)) * p.NoiseMV * 0.5

	v := noise
	if !p.struck.IsZero() && !at.Before(p.struck) && p.Decay > 0 {
		dt := float32(at.Sub(p.struck).Seconds())
		env := math32.Exp(-dt / float32(p.Decay.Seconds()))
		// Struck discs start at their peak and ring down.
		ring := math32.Abs(math32.Cos(2 * math32.Pi * p.ResonanceHz * dt))
		v += p.PeakMV * p.velocity * env * ring
	}
	return math32.Max(0, v)
}

// PiezoADC is an hal.ADC with one simulated piezo per channel.
type PiezoADC struct {
	mu        sync.Mutex
	pads      map[hal.Channel]*Piezo
	refMV     float32
	fullScale float32
	now       func() time.Time
}

var _ hal.ADC = (*PiezoADC)(nil)

// NewPiezoADC creates an ADC with a piezo on every given channel.
func NewPiezoADC(mock config.MockConfig, sampling config.SamplingConfig, channels ...hal.Channel) *PiezoADC {
	a := &PiezoADC{
		pads:      make(map[hal.Channel]*Piezo, len(channels)),
		refMV:     float32(sampling.ReferenceMV),
		fullScale: float32(sampling.FullScale()),
		now:       time.Now,
	}
	for _, ch := range channels {
		a.pads[ch] = NewPiezo(mock)
	}
	return a
}

// Read implements hal.ADC.
func (a *PiezoADC) Read(ch hal.Channel) (uint16, error) {
	a.mu.Lock()
	p, ok := a.pads[ch]
	var mv float32
	if ok {
		mv = p.MilliVolts(a.now())
	}
	a.mu.Unlock()

	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownChannel, ch)
	}
	code := math32.Floor(mv/a.refMV*a.fullScale + 0.5)
	return uint16(math32.Min(code, a.fullScale)), nil
}

// Strike hits the pad on ch.
func (a *PiezoADC) Strike(ch hal.Channel, velocity float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pads[ch]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownChannel, ch)
	}
	p.Strike(a.now(), velocity)
	return nil
}

// Channels returns the simulated channels.
func (a *PiezoADC) Channels() []hal.Channel {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]hal.Channel, 0, len(a.pads))
	for ch := range a.pads {
		out = append(out, ch)
	}
	return out
}
