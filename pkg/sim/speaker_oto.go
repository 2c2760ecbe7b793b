//go:build !headless

package sim

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// NewSpeaker opens the default audio output at sampleRate and returns a DAC
// of the given resolution that plays through it. Levels are buffered for a
// quarter of a second.
func NewSpeaker(sampleRate int, bits uint8) (*Speaker, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}
	<-ready

	s := newSpeaker(bits, sampleRate/4)
	player := ctx.NewPlayer(s)
	player.Play()
	s.closer = player

	return s, nil
}
