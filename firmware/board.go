//go:build tinygo

package main

import (
	"errors"
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"

	"github.com/itohio/drumpads/pkg/hal"
)

var errNoChannel = errors.New("no such ADC channel")

var (
	_ hal.ADC       = (*boardADC)(nil)
	_ hal.DAC       = (*boardDAC)(nil)
	_ hal.Indicator = (*strip)(nil)
)

// boardADC maps channel numbers to configured ADC pins. machine.ADC.Get
// returns a left-aligned 16-bit value regardless of resolution.
type boardADC struct {
	pins  []machine.ADC
	shift uint16
}

func newBoardADC(resolution uint8, pins ...machine.Pin) *boardADC {
	a := &boardADC{shift: 16 - uint16(resolution)}
	cfg := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: uint32(resolution),
	}
	for _, pin := range pins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		adc := machine.ADC{Pin: pin}
		adc.Configure(cfg)
		a.pins = append(a.pins, adc)
	}
	return a
}

func (a *boardADC) Read(ch hal.Channel) (uint16, error) {
	if int(ch) >= len(a.pins) {
		return 0, errNoChannel
	}
	return a.pins[ch].Get() >> a.shift, nil
}

// boardDAC writes to the on-chip DAC, which also takes left-aligned values.
type boardDAC struct {
	shift uint16
}

func newBoardDAC(resolution uint8) *boardDAC {
	PIN_DAC.Configure(machine.PinConfig{Mode: machine.PinAnalog})
	machine.DAC0.Configure(machine.DACConfig{})
	return &boardDAC{shift: 16 - uint16(resolution)}
}

func (d *boardDAC) Write(level uint16) error {
	return machine.DAC0.Set(level << d.shift)
}

// strip drives every pixel of a WS2812 strip with the same colour.
type strip struct {
	dev    ws2812.Device
	pixels []color.RGBA
}

func newStrip(pin machine.Pin, n int) *strip {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &strip{
		dev:    ws2812.New(pin),
		pixels: make([]color.RGBA, n),
	}
}

func (s *strip) SetAll(c color.RGBA) error {
	for i := range s.pixels {
		s.pixels[i] = c
	}
	return s.dev.WriteColors(s.pixels)
}

func (s *strip) Clear() error {
	return s.SetAll(color.RGBA{})
}
