package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the drum pad configuration shared by the firmware, the
// host simulator and the telemetry scope.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Detection DetectionConfig `yaml:"detection"`
	Pads      []PadConfig     `yaml:"pads"`
	Audio     AudioConfig     `yaml:"audio"`
	Indicator IndicatorConfig `yaml:"indicator"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Mock      MockConfig      `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SamplingConfig contains ADC sampling parameters.
type SamplingConfig struct {
	Period         time.Duration `yaml:"period"`          // Timer period between ticks
	ReferenceMV    uint32        `yaml:"reference_mv"`    // ADC reference in millivolts
	Resolution     uint8         `yaml:"resolution"`      // ADC resolution in bits
	TelemetryEvery int           `yaml:"telemetry_every"` // Emit telemetry every N ticks (1 = every tick)
}

// FullScale returns the largest raw code for the configured resolution.
func (s SamplingConfig) FullScale() uint32 {
	return (uint32(1) << s.Resolution) - 1
}

// DetectionConfig contains hit detection parameters.
type DetectionConfig struct {
	ThresholdMV uint32        `yaml:"threshold_mv"`
	Cooldown    time.Duration `yaml:"cooldown"`
}

// PadConfig maps an ADC channel to a pad name and the sound it triggers.
type PadConfig struct {
	Name    string `yaml:"name"`
	Channel uint8  `yaml:"channel"`
	Sound   string `yaml:"sound"`
}

// AudioConfig contains playback parameters.
type AudioConfig struct {
	SampleRate    int           `yaml:"sample_rate"`    // PCM playback rate (Hz)
	DACBits       uint8         `yaml:"dac_bits"`       // DAC resolution in bits
	SpinThreshold time.Duration `yaml:"spin_threshold"` // Below this remaining wait, spin instead of sleeping
}

// Silence returns the mid-scale DAC level.
func (a AudioConfig) Silence() uint16 {
	return uint16(1) << (a.DACBits - 1)
}

// SamplePeriod returns the inter-sample delay in whole nanoseconds.
func (a AudioConfig) SamplePeriod() time.Duration {
	return time.Second / time.Duration(a.SampleRate)
}

// IndicatorConfig contains visual feedback parameters.
type IndicatorConfig struct {
	Color  ColorConfig   `yaml:"color"`
	Dwell  time.Duration `yaml:"dwell"`
	Pixels int           `yaml:"pixels"`
}

// ColorConfig is an RGB colour.
type ColorConfig struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// MonitorConfig contains host-side display parameters.
type MonitorConfig struct {
	WindowSeconds    float64 `yaml:"window_seconds"`
	MaxDisplayPoints int     `yaml:"max_display_points"`
	Decimate         int     `yaml:"decimate"` // Frames folded into one displayed sample (peak hold)
}

// MockConfig contains simulated pad configuration.
type MockConfig struct {
	NoiseMV      float64       `yaml:"noise_mv"`      // Noise amplitude (mV)
	PeakMV       float64       `yaml:"peak_mv"`       // Strike peak amplitude (mV)
	DecayTime    time.Duration `yaml:"decay_time"`    // Envelope time constant
	ResonanceHz  float64       `yaml:"resonance_hz"`  // Piezo ringing frequency
	SampleRate   time.Duration `yaml:"sample_rate"`   // Frame interval for the mock device
	StrikePeriod time.Duration `yaml:"strike_period"` // Automatic strike interval (0 = manual only)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 921600,
		},
		Sampling: SamplingConfig{
			Period:         50 * time.Microsecond, // 20 kHz
			ReferenceMV:    3300,
			Resolution:     12,
			TelemetryEvery: 1,
		},
		Detection: DetectionConfig{
			ThresholdMV: 400,
			Cooldown:    100 * time.Millisecond,
		},
		Pads: []PadConfig{
			{Name: "A", Channel: 1, Sound: "snare"},
			{Name: "B", Channel: 0, Sound: "hihat"},
		},
		Audio: AudioConfig{
			SampleRate:    8000,
			DACBits:       10,
			SpinThreshold: time.Millisecond,
		},
		Indicator: IndicatorConfig{
			Color:  ColorConfig{R: 255},
			Dwell:  125 * time.Millisecond,
			Pixels: 1,
		},
		Monitor: MonitorConfig{
			WindowSeconds:    5,
			MaxDisplayPoints: 1000,
			Decimate:         20,
		},
		Mock: MockConfig{
			NoiseMV:      15,
			PeakMV:       1800,
			DecayTime:    30 * time.Millisecond,
			ResonanceHz:  180,
			SampleRate:   time.Millisecond,
			StrikePeriod: 700 * time.Millisecond,
		},
	}
}

// Validate reports configuration errors that must stop bring-up.
func (c *Config) Validate() error {
	if c.Sampling.Period <= 0 {
		return fmt.Errorf("%w: sampling period must be positive", ErrInvalid)
	}
	if c.Sampling.Resolution == 0 || c.Sampling.Resolution > 16 {
		return fmt.Errorf("%w: ADC resolution %d out of range 1..16", ErrInvalid, c.Sampling.Resolution)
	}
	if c.Sampling.ReferenceMV == 0 {
		return fmt.Errorf("%w: ADC reference must be positive", ErrInvalid)
	}
	if c.Detection.Cooldown < 0 {
		return fmt.Errorf("%w: cooldown must not be negative", ErrInvalid)
	}
	if len(c.Pads) == 0 {
		return fmt.Errorf("%w: at least one pad is required", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Pads))
	for i, p := range c.Pads {
		if p.Name == "" {
			return fmt.Errorf("%w: pad %d has no name", ErrInvalid, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate pad name %q", ErrInvalid, p.Name)
		}
		seen[p.Name] = true
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: audio sample rate must be positive", ErrInvalid)
	}
	if c.Audio.DACBits == 0 || c.Audio.DACBits > 16 {
		return fmt.Errorf("%w: DAC resolution %d out of range 1..16", ErrInvalid, c.Audio.DACBits)
	}
	if c.Indicator.Dwell <= 0 {
		return fmt.Errorf("%w: indicator dwell must be positive", ErrInvalid)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
// Detection settings are left alone: zero threshold and zero cooldown are
// valid choices, and Load starts from Default so omitted keys keep theirs.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sampling.Period == 0 {
		c.Sampling.Period = def.Sampling.Period
	}
	if c.Sampling.ReferenceMV == 0 {
		c.Sampling.ReferenceMV = def.Sampling.ReferenceMV
	}
	if c.Sampling.Resolution == 0 {
		c.Sampling.Resolution = def.Sampling.Resolution
	}
	if c.Sampling.TelemetryEvery == 0 {
		c.Sampling.TelemetryEvery = def.Sampling.TelemetryEvery
	}

	if len(c.Pads) == 0 {
		c.Pads = def.Pads
	}

	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}
	if c.Audio.DACBits == 0 {
		c.Audio.DACBits = def.Audio.DACBits
	}
	if c.Audio.SpinThreshold == 0 {
		c.Audio.SpinThreshold = def.Audio.SpinThreshold
	}

	if c.Indicator.Color == (ColorConfig{}) {
		c.Indicator.Color = def.Indicator.Color
	}
	if c.Indicator.Dwell == 0 {
		c.Indicator.Dwell = def.Indicator.Dwell
	}
	if c.Indicator.Pixels == 0 {
		c.Indicator.Pixels = def.Indicator.Pixels
	}

	if c.Monitor.WindowSeconds == 0 {
		c.Monitor.WindowSeconds = def.Monitor.WindowSeconds
	}
	if c.Monitor.MaxDisplayPoints == 0 {
		c.Monitor.MaxDisplayPoints = def.Monitor.MaxDisplayPoints
	}
	if c.Monitor.Decimate == 0 {
		c.Monitor.Decimate = def.Monitor.Decimate
	}

	if c.Mock.PeakMV == 0 {
		c.Mock.PeakMV = def.Mock.PeakMV
	}
	if c.Mock.DecayTime == 0 {
		c.Mock.DecayTime = def.Mock.DecayTime
	}
	if c.Mock.ResonanceHz == 0 {
		c.Mock.ResonanceHz = def.Mock.ResonanceHz
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
