// Package sample turns telemetry frames into display samples for the host
// tools.
package sample

import (
	"fmt"
	"time"

	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/logging"
	"github.com/itohio/drumpads/pkg/telemetry"
)

// Sample is one telemetry frame in physical units, with values in the
// configured pad order.
type Sample struct {
	Timestamp time.Time
	Volts     []float64
}

// Max returns the largest value in the sample.
func (s Sample) Max() float64 {
	var m float64
	for _, v := range s.Volts {
		m = max(m, v)
	}
	return m
}

// Converter is a function type that converts a Frame channel to a Sample channel.
type Converter func(in <-chan telemetry.Frame) <-chan Sample

// NewConverter creates a converter that maps each frame onto the configured
// pads and converts millivolts to volts.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}
	log := logging.Named("sample")

	return func(in <-chan telemetry.Frame) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for frame := range in {
				s, err := convertFrame(frame, cfg.Pads)
				if err != nil {
					log.Debugw("failed to convert frame", "error", err)
					continue
				}

				select {
				case out <- s:
				case <-time.After(time.Second):
					log.Warn("converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// convertFrame orders frame values by pads. Single-channel frames map to the
// first pad.
func convertFrame(frame telemetry.Frame, pads []config.PadConfig) (Sample, error) {
	if frame.Names == nil {
		if len(frame.Values) != 1 || len(pads) == 0 {
			return Sample{}, fmt.Errorf("unexpected single-channel frame with %d values", len(frame.Values))
		}
		return Sample{Timestamp: frame.Timestamp, Volts: []float64{milliToVolts(frame.Values[0])}}, nil
	}

	volts := make([]float64, len(pads))
	for i, p := range pads {
		mv, ok := frame.Value(p.Name)
		if !ok {
			return Sample{}, fmt.Errorf("pad %s missing from frame", p.Name)
		}
		volts[i] = milliToVolts(mv)
	}
	return Sample{Timestamp: frame.Timestamp, Volts: volts}, nil
}

func milliToVolts(mv uint32) float64 {
	return float64(mv) / 1000
}
