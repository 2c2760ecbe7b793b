package audio

import (
	"context"
	"sync/atomic"

	"github.com/itohio/drumpads/pkg/hal"
	"github.com/itohio/drumpads/pkg/notify"
)

// Encoder converts signed 16-bit PCM to an unsigned DAC level of Bits
// resolution. Zero maps to mid-scale, which is also the silence level.
type Encoder struct {
	Bits uint8
}

// Level converts one sample.
func (e Encoder) Level(s int16) uint16 {
	return uint16((uint32(int32(s) + 32768)) >> (16 - e.Bits))
}

// Silence returns the mid-scale level.
func (e Encoder) Silence() uint16 {
	return uint16(1) << (e.Bits - 1)
}

// Stats holds renderer counters.
type Stats struct {
	Played      uint32 // Buffers rendered
	Unknown     uint32 // Requests for ids missing from the bank
	WriteErrors uint32 // Failed DAC writes
}

// Renderer is the audio rendering task. It plays one buffer at a time; the
// sounds of one Request are played back to back, and a Request posted during
// playback is served once the current one ends.
type Renderer struct {
	dac      hal.DAC
	bank     Bank
	requests *notify.Mailbox[Request]
	pacer    Pacer
	enc      Encoder

	played      atomic.Uint32
	unknown     atomic.Uint32
	writeErrors atomic.Uint32

	// OnPlay, when set, is called with each id before its buffer is rendered.
	OnPlay func(SoundID)
}

// NewRenderer creates a Renderer consuming requests from the mailbox.
func NewRenderer(dac hal.DAC, bank Bank, requests *notify.Mailbox[Request], pacer Pacer, enc Encoder) *Renderer {
	return &Renderer{
		dac:      dac,
		bank:     bank,
		requests: requests,
		pacer:    pacer,
		enc:      enc,
	}
}

// Run serves sound requests until ctx is done.
func (r *Renderer) Run(ctx context.Context) error {
	for {
		req, err := r.requests.Take(ctx)
		if err != nil {
			return err
		}
		for i := range req.Len() {
			r.Play(req.At(i))
		}
	}
}

// Play renders the buffer for id. Unknown ids only return the DAC to rest.
func (r *Renderer) Play(id SoundID) {
	if r.OnPlay != nil {
		r.OnPlay(id)
	}
	buf, ok := r.bank.Lookup(id)
	if !ok {
		r.unknown.Add(1)
		r.write(r.enc.Silence())
		return
	}
	r.Render(buf)
}

// Render writes every sample of buf at the pacer's rate followed by exactly
// one silence write.
func (r *Renderer) Render(buf Buffer) {
	r.pacer.Reset()
	for i := range buf.Len() {
		r.pacer.Wait(i)
		r.write(r.enc.Level(buf.At(i)))
	}
	r.pacer.Wait(buf.Len())
	r.write(r.enc.Silence())
	r.played.Add(1)
}

// Stats returns a snapshot of the counters.
func (r *Renderer) Stats() Stats {
	return Stats{
		Played:      r.played.Load(),
		Unknown:     r.unknown.Load(),
		WriteErrors: r.writeErrors.Load(),
	}
}

func (r *Renderer) write(level uint16) {
	if err := r.dac.Write(level); err != nil {
		r.writeErrors.Add(1)
	}
}
