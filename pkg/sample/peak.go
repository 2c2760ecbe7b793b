package sample

import (
	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/logging"
	"github.com/itohio/drumpads/pkg/telemetry"
)

// NewPeakConverter creates a converter that folds every n consecutive frames
// into one Sample holding the per-pad maximum and the last timestamp.
func NewPeakConverter(cfg *config.Config, n int, bufSize int) Converter {
	if n <= 0 {
		n = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}
	log := logging.Named("sample")

	return func(in <-chan telemetry.Frame) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			var acc Sample
			count := 0
			for frame := range in {
				s, err := convertFrame(frame, cfg.Pads)
				if err != nil {
					log.Debugw("failed to convert frame", "error", err)
					continue
				}

				acc = peakHold(acc, s, count == 0)
				count++
				if count < n {
					continue
				}

				select {
				case out <- acc:
				default:
					log.Warn("peak converter output channel full")
				}
				acc, count = Sample{}, 0
			}

			// Input closed, output the partial window
			if count > 0 {
				select {
				case out <- acc:
				default:
				}
			}
		}()

		return out
	}
}

// peakHold merges s into acc. When first is set acc is replaced.
func peakHold(acc, s Sample, first bool) Sample {
	if first || len(acc.Volts) != len(s.Volts) {
		v := make([]float64, len(s.Volts))
		copy(v, s.Volts)
		return Sample{Timestamp: s.Timestamp, Volts: v}
	}
	for i, v := range s.Volts {
		acc.Volts[i] = max(acc.Volts[i], v)
	}
	acc.Timestamp = s.Timestamp
	return acc
}
