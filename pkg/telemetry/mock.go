package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/hal"
	"github.com/itohio/drumpads/pkg/logging"
	"github.com/itohio/drumpads/pkg/pads"
	"github.com/itohio/drumpads/pkg/sim"
)

// Mock simulates a board streaming telemetry. Each pad is a simulated piezo;
// frames are produced by encoding the readings the way the firmware does and
// parsing them back.
type Mock struct {
	cfg   *config.Config
	pads  []pads.Pad
	scale pads.Scale
	adc   *sim.PiezoADC
	log   *zap.SugaredLogger

	mu        sync.RWMutex
	frames    chan Frame
	cancel    context.CancelFunc
	connected bool
}

// NewMock creates a mocked device for the configured pads.
func NewMock(cfg *config.Config) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}

	padList := make([]pads.Pad, len(cfg.Pads))
	channels := make([]hal.Channel, len(cfg.Pads))
	for i, p := range cfg.Pads {
		padList[i] = pads.Pad{Name: p.Name, Channel: hal.Channel(p.Channel)}
		channels[i] = hal.Channel(p.Channel)
	}

	return &Mock{
		cfg:    cfg,
		pads:   padList,
		scale:  pads.Scale{ReferenceMV: cfg.Sampling.ReferenceMV, FullScale: cfg.Sampling.FullScale()},
		adc:    sim.NewPiezoADC(cfg.Mock, cfg.Sampling, channels...),
		log:    logging.Named("mock"),
		frames: closedFrames(),
	}
}

// Connect starts generating frames and, when a strike period is configured,
// striking random pads.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.frames = make(chan Frame, DefaultBufferSize)
	m.connected = true

	go m.generateFrames(ctx, m.frames)

	if m.cfg.Mock.StrikePeriod > 0 {
		drummer := sim.NewDrummer(m.adc, m.adc.Channels(), m.cfg.Mock.StrikePeriod, uint64(time.Now().UnixNano()))
		drummer.OnStrike = func(ch hal.Channel, v float32) {
			m.log.Debugw("strike", "channel", ch, "velocity", v)
		}
		go drummer.Run(ctx)
	}

	return nil
}

// Close stops the mocked device. The generator then closes the frames channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false

	return nil
}

// Frames returns the channel for reading frames.
func (m *Mock) Frames() <-chan Frame {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frames
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Strike hits pad i with the given velocity (0..1).
func (m *Mock) Strike(i int, velocity float32) error {
	if i < 0 || i >= len(m.pads) {
		return fmt.Errorf("pad %d out of range (have %d)", i, len(m.pads))
	}
	if !m.IsConnected() {
		return ErrNotConnected
	}
	return m.adc.Strike(m.pads[i].Channel, velocity)
}

func (m *Mock) generateFrames(ctx context.Context, out chan<- Frame) {
	defer close(out)

	ticker := time.NewTicker(m.cfg.Mock.SampleRate)
	defer ticker.Stop()

	readings := make([]pads.Reading, len(m.pads))
	var line []byte

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			frame, err := m.frame(now, readings, &line)
			if err != nil {
				m.log.Warnw("failed to generate frame", "error", err)
				continue
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

func (m *Mock) frame(now time.Time, readings []pads.Reading, line *[]byte) (Frame, error) {
	for i, p := range m.pads {
		raw, err := m.adc.Read(p.Channel)
		if err != nil {
			return Frame{}, err
		}
		readings[i] = pads.Reading{Channel: p.Channel, Raw: raw, MilliVolts: m.scale.MilliVolts(raw), Valid: true}
	}
	*line = pads.AppendTelemetry((*line)[:0], m.pads, readings)
	return ParseLine(string(*line), now)
}
