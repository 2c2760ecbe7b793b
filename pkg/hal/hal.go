// Package hal defines the peripheral interfaces the sampling, audio and
// indicator tasks are written against. Board code (firmware) and the host
// simulator provide the implementations.
package hal

import (
	"image/color"
	"time"
)

// Channel identifies an ADC input channel.
type Channel uint8

// ADC performs single-shot conversions.
type ADC interface {
	// Read returns a raw code in 0..FullScale for the given channel.
	Read(ch Channel) (uint16, error)
}

// DAC writes one output sample. Level is in the DAC's native range.
type DAC interface {
	Write(level uint16) error
}

// Indicator is a settable RGB output such as an LED strip.
type Indicator interface {
	SetAll(c color.RGBA) error
	Clear() error
}

// Timer invokes fn once per period until stopped. fn runs in the timer's
// context and must not block.
type Timer interface {
	Start(period time.Duration, fn func()) error
	Stop()
}

// Clock returns a free-running millisecond counter. It wraps at 2^32.
type Clock func() uint32
