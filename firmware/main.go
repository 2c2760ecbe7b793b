//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/hal"
	"github.com/itohio/drumpads/pkg/kit"
)

var uart = machine.UART0

func main() {
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	cfg := config.Default()
	cfg.Serial.BaudRate = UART_BAUD_RATE
	cfg.Sampling.ReferenceMV = ADC_REFERENCE_MV
	cfg.Sampling.Resolution = ADC_RESOLUTION
	cfg.Sampling.TelemetryEvery = TELEMETRY_EVERY
	cfg.Audio.DACBits = DAC_RESOLUTION
	cfg.Indicator.Pixels = LED_PIXEL_COUNT

	k, err := kit.New(cfg, kit.Peripherals{
		// Channel 0 is pad B, channel 1 is pad A.
		ADC:       newBoardADC(ADC_RESOLUTION, PIN_PAD_B, PIN_PAD_A),
		DAC:       newBoardDAC(DAC_RESOLUTION),
		Serial:    uart,
		Indicator: newStrip(PIN_LED, LED_PIXEL_COUNT),
		Timer:     hal.NewTickerTimer(),
		Clock:     hal.NewMillis(),
	})
	if err != nil {
		halt("init failed: ", err)
	}

	println("drumpads ready")
	if err := k.Run(context.Background()); err != nil {
		halt("kit stopped: ", err)
	}
}

// halt reports a fatal error and parks the board so no task runs.
func halt(msg string, err error) {
	for {
		println(msg, err.Error())
		time.Sleep(time.Second)
	}
}
