package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Serial.Port)
	assert.Equal(t, 921600, cfg.Serial.BaudRate)
	assert.Equal(t, 50*time.Microsecond, cfg.Sampling.Period)
	assert.Equal(t, uint32(3300), cfg.Sampling.ReferenceMV)
	assert.Equal(t, uint32(4095), cfg.Sampling.FullScale())
	assert.Equal(t, uint32(400), cfg.Detection.ThresholdMV)
	assert.Equal(t, 100*time.Millisecond, cfg.Detection.Cooldown)
	assert.Len(t, cfg.Pads, 2)
	assert.Equal(t, "A", cfg.Pads[0].Name)
	assert.Equal(t, "snare", cfg.Pads[0].Sound)
	assert.Equal(t, "hihat", cfg.Pads[1].Sound)
	assert.Equal(t, 8000, cfg.Audio.SampleRate)
	assert.Equal(t, uint16(512), cfg.Audio.Silence())
	assert.Equal(t, 125*time.Microsecond, cfg.Audio.SamplePeriod())
	assert.Equal(t, 125*time.Millisecond, cfg.Indicator.Dwell)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 115200

sampling:
  period: 100us
  reference_mv: 3000
  resolution: 10

detection:
  threshold_mv: 250
  cooldown: 80ms

pads:
  - name: K
    channel: 2
    sound: snare

audio:
  sample_rate: 16000
  dac_bits: 8

indicator:
  color: {r: 0, g: 0, b: 255}
  dwell: 50ms
  pixels: 8
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 100*time.Microsecond, cfg.Sampling.Period)
	assert.Equal(t, uint32(1023), cfg.Sampling.FullScale())
	assert.Equal(t, uint32(250), cfg.Detection.ThresholdMV)
	assert.Equal(t, 80*time.Millisecond, cfg.Detection.Cooldown)
	require.Len(t, cfg.Pads, 1)
	assert.Equal(t, PadConfig{Name: "K", Channel: 2, Sound: "snare"}, cfg.Pads[0])
	assert.Equal(t, uint16(128), cfg.Audio.Silence())
	assert.Equal(t, ColorConfig{B: 255}, cfg.Indicator.Color)
	assert.Equal(t, 8, cfg.Indicator.Pixels)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyACM0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 921600, cfg.Serial.BaudRate)
	assert.Len(t, cfg.Pads, 2)
	assert.Equal(t, 125*time.Millisecond, cfg.Indicator.Dwell)
}

func TestLoad_ZeroDetectionIsKept(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
detection:
  threshold_mv: 0
  cooldown: 0s
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, uint32(0), cfg.Detection.ThresholdMV)
	assert.Equal(t, time.Duration(0), cfg.Detection.Cooldown)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OmittedDetectionKeepsDefaults(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("detection:\n  cooldown: 50ms\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, uint32(400), cfg.Detection.ThresholdMV)
	assert.Equal(t, 50*time.Millisecond, cfg.Detection.Cooldown)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Detection.ThresholdMV = 600

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, uint32(600), loaded.Detection.ThresholdMV)
	assert.Equal(t, cfg.Pads, loaded.Pads)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "zero period", mutate: func(c *Config) { c.Sampling.Period = 0 }},
		{name: "resolution too high", mutate: func(c *Config) { c.Sampling.Resolution = 17 }},
		{name: "zero reference", mutate: func(c *Config) { c.Sampling.ReferenceMV = 0 }},
		{name: "negative cooldown", mutate: func(c *Config) { c.Detection.Cooldown = -time.Millisecond }},
		{name: "no pads", mutate: func(c *Config) { c.Pads = nil }},
		{name: "unnamed pad", mutate: func(c *Config) { c.Pads[0].Name = "" }},
		{name: "duplicate pad", mutate: func(c *Config) { c.Pads[1].Name = c.Pads[0].Name }},
		{name: "zero sample rate", mutate: func(c *Config) { c.Audio.SampleRate = 0 }},
		{name: "zero dac bits", mutate: func(c *Config) { c.Audio.DACBits = 0 }},
		{name: "zero dwell", mutate: func(c *Config) { c.Indicator.Dwell = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
