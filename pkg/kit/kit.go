// Package kit brings up a drum kit: it validates the configuration, builds
// the sampling, audio and indicator tasks around the given peripherals and
// runs them with the sampling timer.
package kit

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/itohio/drumpads/pkg/audio"
	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/hal"
	"github.com/itohio/drumpads/pkg/indicator"
	"github.com/itohio/drumpads/pkg/notify"
	"github.com/itohio/drumpads/pkg/pads"
)

// ErrMissingPeripheral is returned by New when a required peripheral is nil.
var ErrMissingPeripheral = errors.New("missing peripheral")

// Peripherals are the board resources a Kit drives.
type Peripherals struct {
	ADC       hal.ADC
	DAC       hal.DAC
	Serial    io.Writer
	Indicator hal.Indicator
	Timer     hal.Timer
	Clock     hal.Clock
}

// Stats aggregates the counters of every task.
type Stats struct {
	Sampler         pads.Stats
	Audio           audio.Stats
	Indicator       indicator.Stats
	SoundOverwrites uint32 // Requests replaced before the renderer took them
}

// Option customises a Kit.
type Option func(*options)

type options struct {
	bank  audio.Bank
	pacer audio.Pacer
}

// WithBank replaces the embedded sample bank.
func WithBank(bank audio.Bank) Option {
	return func(o *options) { o.bank = bank }
}

// WithPacer replaces the deadline pacer used by the renderer.
func WithPacer(p audio.Pacer) Option {
	return func(o *options) { o.pacer = p }
}

// Kit owns the three tasks and the primitives connecting them.
type Kit struct {
	cfg    *config.Config
	periph Peripherals

	Wake   *notify.Wake
	Flash  *notify.Counter
	Sounds *notify.Mailbox[audio.Request]

	Sampler  *pads.Sampler
	Renderer *audio.Renderer
	Flasher  *indicator.Flasher
}

// New validates cfg and builds a Kit. Every error returned here is an
// initialisation failure; no task has been started.
func New(cfg *config.Config, periph Peripherals, opts ...Option) (*Kit, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := periph.check(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.bank == nil {
		bank, err := audio.DefaultBank()
		if err != nil {
			return nil, fmt.Errorf("failed to load sample bank: %w", err)
		}
		o.bank = bank
	}
	if o.pacer == nil {
		o.pacer = audio.NewDeadlinePacer(cfg.Audio.SamplePeriod(), cfg.Audio.SpinThreshold)
	}

	padList, err := Pads(cfg, o.bank)
	if err != nil {
		return nil, err
	}

	k := &Kit{
		cfg:    cfg,
		periph: periph,
		Wake:   notify.NewWake(),
		Flash:  notify.NewCounter(),
		Sounds: notify.NewMailbox[audio.Request](),
	}

	k.Sampler = pads.NewSampler(padList, pads.Options{
		Scale:          pads.Scale{ReferenceMV: cfg.Sampling.ReferenceMV, FullScale: cfg.Sampling.FullScale()},
		ThresholdMV:    cfg.Detection.ThresholdMV,
		CooldownMS:     uint32(cfg.Detection.Cooldown / time.Millisecond),
		TelemetryEvery: cfg.Sampling.TelemetryEvery,
	}, periph.ADC, periph.Serial, periph.Clock, k.Wake, k.Flash, k.Sounds)

	k.Renderer = audio.NewRenderer(periph.DAC, o.bank, k.Sounds, o.pacer, audio.Encoder{Bits: cfg.Audio.DACBits})

	c := cfg.Indicator.Color
	k.Flasher = indicator.New(periph.Indicator, k.Flash, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}, cfg.Indicator.Dwell)

	return k, nil
}

// Pads resolves the configured pads against bank. Unknown sound names and
// sounds missing from the bank are initialisation errors. A pad with no sound
// is telemetry only: it is sampled and reported but never detected.
func Pads(cfg *config.Config, bank audio.Bank) ([]pads.Pad, error) {
	if cfg.Detection.ThresholdMV >= cfg.Sampling.ReferenceMV {
		return nil, fmt.Errorf("%w: threshold %d mV is not below the %d mV reference",
			config.ErrInvalid, cfg.Detection.ThresholdMV, cfg.Sampling.ReferenceMV)
	}

	out := make([]pads.Pad, 0, len(cfg.Pads))
	sounding := 0
	for _, pc := range cfg.Pads {
		if strings.TrimSpace(pc.Sound) == "" {
			out = append(out, pads.Pad{Name: pc.Name, Channel: hal.Channel(pc.Channel), Sound: audio.None})
			continue
		}
		id, err := audio.ParseSoundID(pc.Sound)
		if err != nil {
			return nil, fmt.Errorf("failed to configure pad %s: %w", pc.Name, err)
		}
		if _, ok := bank.Lookup(id); !ok {
			return nil, fmt.Errorf("failed to configure pad %s: sound %s not in bank", pc.Name, id)
		}
		out = append(out, pads.Pad{Name: pc.Name, Channel: hal.Channel(pc.Channel), Sound: id})
		sounding++
	}

	// Every pad may hit in the same tick; each needs a slot in the request.
	if sounding > audio.MaxRequestSounds {
		return nil, fmt.Errorf("%w: %d pads with sounds, at most %d supported",
			config.ErrInvalid, sounding, audio.MaxRequestSounds)
	}
	return out, nil
}

// Run starts the three tasks and then the sampling timer. It blocks until
// ctx is done or a task fails, stops the timer and waits for every task to
// return. A cancelled ctx is a clean shutdown and yields nil.
func (k *Kit) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return k.Sampler.Run(gctx) })
	g.Go(func() error { return k.Renderer.Run(gctx) })
	g.Go(func() error { return k.Flasher.Run(gctx) })

	if err := k.periph.Timer.Start(k.cfg.Sampling.Period, k.Wake.Post); err != nil {
		cancel()
		_ = g.Wait()
		return fmt.Errorf("failed to start sampling timer: %w", err)
	}

	g.Go(func() error {
		<-gctx.Done()
		k.periph.Timer.Stop()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Stats returns a snapshot of every task's counters.
func (k *Kit) Stats() Stats {
	return Stats{
		Sampler:         k.Sampler.Stats(),
		Audio:           k.Renderer.Stats(),
		Indicator:       k.Flasher.Stats(),
		SoundOverwrites: k.Sounds.Overwritten(),
	}
}

func (p Peripherals) check() error {
	switch {
	case p.ADC == nil:
		return fmt.Errorf("%w: ADC", ErrMissingPeripheral)
	case p.DAC == nil:
		return fmt.Errorf("%w: DAC", ErrMissingPeripheral)
	case p.Serial == nil:
		return fmt.Errorf("%w: serial", ErrMissingPeripheral)
	case p.Indicator == nil:
		return fmt.Errorf("%w: indicator", ErrMissingPeripheral)
	case p.Timer == nil:
		return fmt.Errorf("%w: timer", ErrMissingPeripheral)
	case p.Clock == nil:
		return fmt.Errorf("%w: clock", ErrMissingPeripheral)
	}
	return nil
}
