// Package pads implements the sampling and hit detection task: every timer
// tick it reads each pad's ADC channel, converts the code to millivolts,
// emits a telemetry line and dispatches hit events.
package pads

import (
	"github.com/itohio/drumpads/pkg/audio"
	"github.com/itohio/drumpads/pkg/hal"
)

// Pad binds an ADC channel to a name used in telemetry and the sound it plays.
type Pad struct {
	Name    string
	Channel hal.Channel
	Sound   audio.SoundID
}

// Reading is the latest conversion of one pad.
type Reading struct {
	Channel    hal.Channel
	Raw        uint16
	MilliVolts uint32
	Valid      bool // At least one successful conversion has been made
}

// Hit is a detected strike on a pad.
type Hit struct {
	Pad       int    // Index into the sampler's pads
	Sound     audio.SoundID
	Timestamp uint32 // Clock milliseconds
}

// Scale converts raw ADC codes to millivolts with integer arithmetic.
type Scale struct {
	ReferenceMV uint32
	FullScale   uint32
}

// DefaultScale is a 12-bit ADC with a 3.3 V reference.
var DefaultScale = Scale{ReferenceMV: 3300, FullScale: 4095}

// MilliVolts returns floor(raw * ReferenceMV / FullScale). Codes above full
// scale are clamped.
func (s Scale) MilliVolts(raw uint16) uint32 {
	code := uint32(raw)
	if code > s.FullScale {
		code = s.FullScale
	}
	return code * s.ReferenceMV / s.FullScale
}

// MilliVolts converts a 12-bit code against a 3300 mV reference.
func MilliVolts(raw uint16) uint32 {
	return DefaultScale.MilliVolts(raw)
}
