//go:build tinygo

package main

import "machine"

const (
	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// DAC configuration
	DAC_RESOLUTION = 10 // SAMD21 DAC is 10-bit, mid-scale (512) is silence

	// Pad inputs. Channel numbers match config.Default: pad A on channel 1,
	// pad B on channel 0.
	PIN_PAD_B = machine.A1
	PIN_PAD_A = machine.A2

	// Audio output
	PIN_DAC = machine.A0

	// WS2812 strip data line
	PIN_LED         = machine.D6
	LED_PIXEL_COUNT = 1

	// Serial configuration
	// A full dual line "A:3300,B:3300\r\n" is 15 bytes; at 20 kHz that is
	// 300 kB/s against 92 kB/s for 921600 8N1. Set TELEMETRY_EVERY to 4 or
	// more to keep the UART from stalling the sampler.
	UART_BAUD_RATE  = 921600
	TELEMETRY_EVERY = 1
)
