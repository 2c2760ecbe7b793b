// Package audio renders pre-recorded PCM drum samples to a DAC.
package audio

import (
	"embed"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
)

// SoundID identifies a pre-recorded sample.
type SoundID uint8

const (
	None SoundID = iota
	Snare
	HiHat
)

func (id SoundID) String() string {
	switch id {
	case Snare:
		return "snare"
	case HiHat:
		return "hihat"
	default:
		return "none"
	}
}

// ParseSoundID maps a config name to a SoundID.
func ParseSoundID(name string) (SoundID, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "snare":
		return Snare, nil
	case "hihat", "hi-hat", "hi_hat":
		return HiHat, nil
	default:
		return None, fmt.Errorf("unknown sound %q", name)
	}
}

// Buffer is an immutable PCM sample buffer. Its length is the length of the
// sample slice, so indexing can never run past the declared size.
type Buffer struct {
	samples []int16
}

// NewBuffer wraps samples. The caller must not modify them afterwards.
func NewBuffer(samples []int16) Buffer {
	return Buffer{samples: samples}
}

// Len returns the number of samples.
func (b Buffer) Len() int {
	return len(b.samples)
}

// At returns sample i.
func (b Buffer) At(i int) int16 {
	return b.samples[i]
}

// Bank maps sound ids to buffers.
type Bank map[SoundID]Buffer

// Lookup returns the buffer for id.
func (b Bank) Lookup(id SoundID) (Buffer, bool) {
	buf, ok := b[id]
	return buf, ok
}

//go:embed assets/*.pcm
var assets embed.FS

var (
	defaultBank     Bank
	defaultBankErr  error
	defaultBankOnce sync.Once
)

// DefaultBank returns the built-in samples (signed 16-bit little endian,
// 8 kHz mono). The assets are decoded once and shared.
func DefaultBank() (Bank, error) {
	defaultBankOnce.Do(func() {
		bank := make(Bank, 2)
		for id, name := range map[SoundID]string{Snare: "assets/snare.pcm", HiHat: "assets/hihat.pcm"} {
			data, err := assets.ReadFile(name)
			if err != nil {
				defaultBankErr = fmt.Errorf("failed to read %s: %w", name, err)
				return
			}
			buf, err := DecodePCM(data)
			if err != nil {
				defaultBankErr = fmt.Errorf("failed to decode %s: %w", name, err)
				return
			}
			bank[id] = buf
		}
		defaultBank = bank
	})
	return defaultBank, defaultBankErr
}

// DecodePCM decodes signed 16-bit little endian samples.
func DecodePCM(data []byte) (Buffer, error) {
	if len(data)%2 != 0 {
		return Buffer{}, fmt.Errorf("odd PCM length %d", len(data))
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return NewBuffer(samples), nil
}
