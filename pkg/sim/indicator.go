package sim

import (
	"image/color"
	"sync"

	"go.uber.org/zap"

	"github.com/itohio/drumpads/pkg/hal"
)

// LogIndicator is an hal.Indicator that logs every change.
type LogIndicator struct {
	log *zap.SugaredLogger

	mu     sync.Mutex
	lit    bool
	colour color.RGBA
	pulses int
}

var _ hal.Indicator = (*LogIndicator)(nil)

// NewLogIndicator creates a LogIndicator. A nil logger discards output.
func NewLogIndicator(log *zap.SugaredLogger) *LogIndicator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &LogIndicator{log: log}
}

// SetAll implements hal.Indicator.
func (l *LogIndicator) SetAll(c color.RGBA) error {
	l.mu.Lock()
	l.lit = true
	l.colour = c
	l.pulses++
	n := l.pulses
	l.mu.Unlock()

	l.log.Debugw("indicator on", "r", c.R, "g", c.G, "b", c.B, "pulse", n)
	return nil
}

// Clear implements hal.Indicator.
func (l *LogIndicator) Clear() error {
	l.mu.Lock()
	l.lit = false
	l.mu.Unlock()

	l.log.Debug("indicator off")
	return nil
}

// Lit reports whether the indicator is on and its colour.
func (l *LogIndicator) Lit() (bool, color.RGBA) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lit, l.colour
}

// Pulses returns how many times the indicator was lit.
func (l *LogIndicator) Pulses() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pulses
}
