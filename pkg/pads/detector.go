package pads

import "github.com/itohio/drumpads/pkg/hal"

// Detector decides whether a reading is a new hit. It keeps one cooldown
// timestamp per pad and is not safe for concurrent use; the sampling task
// is its only owner.
type Detector struct {
	thresholdMV uint32
	cooldownMS  uint32

	last  []uint32
	armed []bool // false until the pad's first hit
}

// NewDetector creates a detector for n pads.
func NewDetector(n int, thresholdMV, cooldownMS uint32) *Detector {
	return &Detector{
		thresholdMV: thresholdMV,
		cooldownMS:  cooldownMS,
		last:        make([]uint32, n),
		armed:       make([]bool, n),
	}
}

// Hit reports whether mv on pad i at time now is a new hit and, if so,
// records now as the pad's last hit. A pad that has never fired is always
// eligible. Elapsed time uses unsigned differences so the comparison holds
// across a wrap of the millisecond counter.
func (d *Detector) Hit(i int, mv, now uint32) bool {
	if mv <= d.thresholdMV {
		return false
	}
	if d.armed[i] && hal.Elapsed(now, d.last[i]) <= d.cooldownMS {
		return false
	}
	d.last[i] = now
	d.armed[i] = true
	return true
}

// Reset forgets all previous hits.
func (d *Detector) Reset() {
	for i := range d.last {
		d.last[i] = 0
		d.armed[i] = false
	}
}
