//go:build headless

package sim

// NewSpeaker returns a DAC that only queues levels. Nothing drains the queue
// unless the caller reads from it.
func NewSpeaker(sampleRate int, bits uint8) (*Speaker, error) {
	return newSpeaker(bits, sampleRate/4), nil
}
