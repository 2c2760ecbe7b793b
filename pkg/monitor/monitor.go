// Package monitor keeps a time window of telemetry samples on the host and
// re-detects hits in it with the same rule the firmware uses.
package monitor

import (
	"strings"
	"sync"
	"time"

	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/pads"
	"github.com/itohio/drumpads/pkg/sample"
)

// Hit is a strike detected in the telemetry stream.
type Hit struct {
	Pad   int       // Index into the configured pads
	Time  time.Time // Timestamp of the sample that crossed the threshold
	Volts float64
}

// UpdateFunc receives the current window after every processed sample.
type UpdateFunc func(samples []sample.Sample, hits []Hit)

// Monitor buffers samples within a time window and detects hits.
type Monitor struct {
	windowDuration time.Duration
	detector       *pads.Detector
	pads           int
	detect         []bool // False for telemetry-only pads

	mu       sync.RWMutex
	samples  []sample.Sample // Oldest first, removed by timestamp
	hits     []Hit
	counts   []int
	start    time.Time
	shutdown bool // Set when the input closes, prevents further callbacks

	cbMu      sync.RWMutex
	callbacks []UpdateFunc
}

// New creates a Monitor for the configured pads.
func New(cfg *config.Config) *Monitor {
	n := len(cfg.Pads)
	detect := make([]bool, n)
	for i, p := range cfg.Pads {
		detect[i] = strings.TrimSpace(p.Sound) != ""
	}
	return &Monitor{
		windowDuration: time.Duration(cfg.Monitor.WindowSeconds * float64(time.Second)),
		detector:       pads.NewDetector(n, cfg.Detection.ThresholdMV, uint32(cfg.Detection.Cooldown/time.Millisecond)),
		pads:           n,
		detect:         detect,
		counts:         make([]int, n),
	}
}

// ProcessSamples consumes samples until the input channel closes, then sets
// the shutdown flag so no further callbacks are made.
func (m *Monitor) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		m.processSample(s)
	}

	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

func (m *Monitor) processSample(s sample.Sample) {
	m.mu.Lock()

	if m.start.IsZero() {
		m.start = s.Timestamp
	}
	m.samples = append(m.samples, s)

	cutoff := s.Timestamp.Add(-m.windowDuration)
	m.samples = trimSamples(m.samples, cutoff)
	m.hits = trimHits(m.hits, cutoff)

	// Milliseconds since the first sample, wrapping like the board's counter.
	now := uint32(s.Timestamp.Sub(m.start).Milliseconds())
	for i, v := range s.Volts {
		if i >= m.pads {
			break
		}
		if !m.detect[i] {
			continue
		}
		mv := uint32(v*1000 + 0.5)
		if m.detector.Hit(i, mv, now) {
			m.hits = append(m.hits, Hit{Pad: i, Time: s.Timestamp, Volts: v})
			m.counts[i]++
		}
	}

	notify := !m.shutdown
	m.mu.Unlock()

	if notify {
		m.notifyCallbacks()
	}
}

func trimSamples(samples []sample.Sample, cutoff time.Time) []sample.Sample {
	i := 0
	for i < len(samples) && !samples[i].Timestamp.After(cutoff) {
		i++
	}
	return samples[i:]
}

func trimHits(hits []Hit, cutoff time.Time) []Hit {
	i := 0
	for i < len(hits) && !hits[i].Time.After(cutoff) {
		i++
	}
	return hits[i:]
}

// Samples returns a copy of the samples in the window.
func (m *Monitor) Samples() []sample.Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sample.Sample, len(m.samples))
	copy(result, m.samples)
	return result
}

// Hits returns a copy of the hits in the window.
func (m *Monitor) Hits() []Hit {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Hit, len(m.hits))
	copy(result, m.hits)
	return result
}

// Counts returns the total number of hits per pad since creation or Reset.
func (m *Monitor) Counts() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]int, len(m.counts))
	copy(result, m.counts)
	return result
}

// Reset clears the window, the hit counters and the detector.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.samples = nil
	m.hits = nil
	m.counts = make([]int, m.pads)
	m.start = time.Time{}
	m.detector.Reset()
}

// OnUpdate registers a callback invoked after every processed sample. The
// callback receives copies and should return quickly.
func (m *Monitor) OnUpdate(callback UpdateFunc) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown allows callbacks again. Call it before starting a new chain.
func (m *Monitor) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

func (m *Monitor) notifyCallbacks() {
	samples := m.Samples()
	hits := m.Hits()

	m.cbMu.RLock()
	callbacks := make([]UpdateFunc, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samples, hits)
		}
	}
}
