package sim

import (
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"

	"github.com/itohio/drumpads/pkg/hal"
)

// Speaker is an hal.DAC whose levels are queued for an audio output. It also
// implements io.Reader producing signed 16-bit little endian mono PCM, which
// is what the output backend pulls from. When the queue runs dry the last
// level is held, like a real DAC output.
type Speaker struct {
	bits uint8

	mu    sync.Mutex
	queue []int16
	head  int
	size  int
	last  int16

	writes  atomic.Uint64
	dropped atomic.Uint64

	closer io.Closer
}

var _ hal.DAC = (*Speaker)(nil)

func newSpeaker(bits uint8, capacity int) *Speaker {
	if capacity < 1 {
		capacity = 1
	}
	return &Speaker{
		bits:  bits,
		queue: make([]int16, capacity),
	}
}

// Write implements hal.DAC. When the queue is full the oldest level is
// dropped.
func (s *Speaker) Write(level uint16) error {
	v := s.pcm(level)

	s.mu.Lock()
	if s.size == len(s.queue) {
		s.head = (s.head + 1) % len(s.queue)
		s.size--
		s.dropped.Add(1)
	}
	s.queue[(s.head+s.size)%len(s.queue)] = v
	s.size++
	s.mu.Unlock()

	s.writes.Add(1)
	return nil
}

// Read implements io.Reader.
func (s *Speaker) Read(p []byte) (int, error) {
	n := len(p) / 2

	s.mu.Lock()
	for i := range n {
		if s.size > 0 {
			s.last = s.queue[s.head]
			s.head = (s.head + 1) % len(s.queue)
			s.size--
		}
		binary.LittleEndian.PutUint16(p[2*i:], uint16(s.last))
	}
	s.mu.Unlock()

	return n * 2, nil
}

// Writes returns the number of levels written.
func (s *Speaker) Writes() uint64 { return s.writes.Load() }

// Dropped returns the number of levels discarded because the output fell
// behind.
func (s *Speaker) Dropped() uint64 { return s.dropped.Load() }

// Close stops the audio output.
func (s *Speaker) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// pcm maps an unsigned DAC level back to signed 16-bit PCM.
func (s *Speaker) pcm(level uint16) int16 {
	return int16(int32(uint32(level)<<(16-s.bits)) - 32768)
}
