package hal

import "time"

// NewMillis returns a Clock counting milliseconds since the call. The value
// is truncated to 32 bits and wraps like a hardware tick counter.
func NewMillis() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

// Elapsed returns now-then in milliseconds, correct across one wrap of the
// counter.
func Elapsed(now, then uint32) uint32 {
	return now - then
}
