package pads

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/itohio/drumpads/pkg/audio"
	"github.com/itohio/drumpads/pkg/hal"
	"github.com/itohio/drumpads/pkg/notify"
)

// Stats holds sampler counters.
type Stats struct {
	Ticks         uint32
	Hits          uint32
	ReadErrors    uint32
	WriteErrors   uint32
	SkippedLines  uint32 // Telemetry lines withheld because a pad had no valid reading
	TimerOverruns uint32 // Ticks coalesced while the sampler was busy
}

// Options configures a Sampler.
type Options struct {
	Scale          Scale
	ThresholdMV    uint32
	CooldownMS     uint32
	TelemetryEvery int // Emit telemetry every N ticks; <= 1 means every tick
}

// Sampler is the sampling and detection task. All of its state (readings,
// cooldowns, line buffer) is owned by the goroutine running Run.
type Sampler struct {
	pads  []Pad
	opts  Options
	adc   hal.ADC
	out   io.Writer
	clock hal.Clock

	wake   *notify.Wake
	flash  *notify.Counter
	sounds *notify.Mailbox[audio.Request]

	detector *Detector
	readings []Reading
	line     []byte
	ticks    uint32

	hits         atomic.Uint32
	readErrors   atomic.Uint32
	writeErrors  atomic.Uint32
	skippedLines atomic.Uint32
	tickCount    atomic.Uint32

	// OnHit, when set, is called for every dispatched hit from the sampling
	// goroutine. It must not block.
	OnHit func(Hit)
}

// NewSampler creates a Sampler. wake is posted by the timer callback, flash
// receives one signal per hit and sounds receives one Request per tick that
// had hits, holding the hit pads' sounds.
func NewSampler(pads []Pad, opts Options, adc hal.ADC, out io.Writer, clock hal.Clock,
	wake *notify.Wake, flash *notify.Counter, sounds *notify.Mailbox[audio.Request]) *Sampler {
	if opts.Scale == (Scale{}) {
		opts.Scale = DefaultScale
	}
	if opts.TelemetryEvery < 1 {
		opts.TelemetryEvery = 1
	}

	readings := make([]Reading, len(pads))
	for i, p := range pads {
		readings[i].Channel = p.Channel
	}

	return &Sampler{
		pads:     pads,
		opts:     opts,
		adc:      adc,
		out:      out,
		clock:    clock,
		wake:     wake,
		flash:    flash,
		sounds:   sounds,
		detector: NewDetector(len(pads), opts.ThresholdMV, opts.CooldownMS),
		readings: readings,
		line:     make([]byte, 0, 16*len(pads)),
	}
}

// Run waits for timer wakes and performs one Tick per wake until ctx is done.
func (s *Sampler) Run(ctx context.Context) error {
	for {
		if err := s.wake.Wait(ctx); err != nil {
			return err
		}
		s.Tick()
	}
}

// Tick samples every pad once, emits telemetry, then runs hit detection.
func (s *Sampler) Tick() {
	s.sample()
	s.ticks++
	s.tickCount.Store(s.ticks)

	if s.ticks%uint32(s.opts.TelemetryEvery) == 0 {
		s.emit()
	}

	now := s.clock()
	var req audio.Request
	for i := range s.pads {
		if s.detect(i, now) {
			req.Add(s.pads[i].Sound)
		}
	}
	if req.Len() > 0 {
		s.sounds.Post(req)
	}
}

// Readings returns a copy of the latest readings. Call it from the sampling
// goroutine or after Run has returned.
func (s *Sampler) Readings() []Reading {
	out := make([]Reading, len(s.readings))
	copy(out, s.readings)
	return out
}

// Stats returns a snapshot of the counters. Safe to call from any goroutine.
func (s *Sampler) Stats() Stats {
	st := Stats{
		Ticks:        s.tickCount.Load(),
		Hits:         s.hits.Load(),
		ReadErrors:   s.readErrors.Load(),
		WriteErrors:  s.writeErrors.Load(),
		SkippedLines: s.skippedLines.Load(),
	}
	if s.wake != nil {
		st.TimerOverruns = s.wake.Overruns()
	}
	return st
}

// sample converts every channel. A failed read keeps the previous value.
func (s *Sampler) sample() {
	for i, p := range s.pads {
		raw, err := s.adc.Read(p.Channel)
		if err != nil {
			s.readErrors.Add(1)
			continue
		}
		r := &s.readings[i]
		r.Raw = raw
		r.MilliVolts = s.opts.Scale.MilliVolts(raw)
		r.Valid = true
	}
}

// emit writes the telemetry line. Write errors are counted and dropped.
func (s *Sampler) emit() {
	for _, r := range s.readings {
		if !r.Valid {
			s.skippedLines.Add(1)
			return
		}
	}
	s.line = AppendTelemetry(s.line[:0], s.pads, s.readings)
	if _, err := s.out.Write(s.line); err != nil {
		s.writeErrors.Add(1)
	}
}

// detect runs hit detection for pad i and signals the indicator on a hit.
// Pads without a valid reading and telemetry-only pads are skipped.
func (s *Sampler) detect(i int, now uint32) bool {
	r := s.readings[i]
	if !r.Valid || s.pads[i].Sound == audio.None {
		return false
	}
	if !s.detector.Hit(i, r.MilliVolts, now) {
		return false
	}

	s.hits.Add(1)
	s.flash.Give()

	if s.OnHit != nil {
		s.OnHit(Hit{Pad: i, Sound: s.pads[i].Sound, Timestamp: now})
	}
	return true
}
