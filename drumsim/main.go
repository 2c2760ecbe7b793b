// Command drumsim runs the drum kit on simulated peripherals: piezo pads
// struck at random, the sound card as the DAC and a logged indicator.
// Telemetry goes to stdout or to a serial port, where padscope can read it.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/hal"
	"github.com/itohio/drumpads/pkg/kit"
	"github.com/itohio/drumpads/pkg/logging"
	"github.com/itohio/drumpads/pkg/sim"
	"github.com/itohio/drumpads/pkg/telemetry"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		portFlag   = flag.String("p", "", "Serial port for telemetry (default: stdout)")
		quietFlag  = flag.Bool("quiet", false, "Discard telemetry")
		periodFlag = flag.Duration("strike-period", -1, "Mean interval between random strikes (0 = none, overrides config)")
		seedFlag   = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random strike seed")
		durFlag    = flag.Duration("duration", 0, "Stop after this long (0 = until interrupted)")
	)
	flag.Parse()

	log := logging.Named("drumsim")
	defer logging.Sync()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalw("Failed to load configuration", "file", *configFlag, "error", err)
	}
	if *periodFlag >= 0 {
		cfg.Mock.StrikePeriod = *periodFlag
	}

	var out io.Writer = os.Stdout
	switch {
	case *quietFlag:
		out = io.Discard
	case *portFlag != "":
		port, err := telemetry.OpenTransport(*portFlag, cfg.Serial.BaudRate)
		if err != nil {
			log.Fatalw("Failed to open telemetry port", "port", *portFlag, "error", err)
		}
		defer port.Close()
		out = port
	}

	channels := make([]hal.Channel, len(cfg.Pads))
	for i, p := range cfg.Pads {
		channels[i] = hal.Channel(p.Channel)
	}
	adc := sim.NewPiezoADC(cfg.Mock, cfg.Sampling, channels...)

	speaker, err := sim.NewSpeaker(cfg.Audio.SampleRate, cfg.Audio.DACBits)
	if err != nil {
		log.Fatalw("Failed to open audio output", "error", err)
	}
	defer speaker.Close()

	led := sim.NewLogIndicator(logging.Named("indicator"))
	timer := hal.NewTickerTimer()

	k, err := kit.New(cfg, kit.Peripherals{
		ADC:       adc,
		DAC:       speaker,
		Serial:    out,
		Indicator: led,
		Timer:     timer,
		Clock:     hal.NewMillis(),
	})
	if err != nil {
		log.Fatalw("Failed to initialise kit", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *durFlag > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *durFlag)
		defer cancel()
	}

	drummer := sim.NewDrummer(adc, channels, cfg.Mock.StrikePeriod, *seedFlag)
	drummer.OnStrike = func(ch hal.Channel, velocity float32) {
		log.Debugw("Strike", "channel", ch, "velocity", velocity)
	}
	go drummer.Run(ctx)

	log.Infow("Kit running",
		"pads", len(cfg.Pads),
		"period", cfg.Sampling.Period,
		"strike_period", cfg.Mock.StrikePeriod,
	)

	runErr := k.Run(ctx)

	st := k.Stats()
	log.Infow("Kit stopped",
		"ticks", st.Sampler.Ticks,
		"hits", st.Sampler.Hits,
		"read_errors", st.Sampler.ReadErrors,
		"write_errors", st.Sampler.WriteErrors,
		"overruns", st.Sampler.TimerOverruns,
		"sounds_played", st.Audio.Played,
		"sounds_replaced", st.SoundOverwrites,
		"pulses", st.Indicator.Pulses,
		"speaker_dropped", speaker.Dropped(),
	)
	if runErr != nil {
		log.Errorw("Kit failed", "error", runErr)
		logging.Sync()
		os.Exit(1)
	}
}
