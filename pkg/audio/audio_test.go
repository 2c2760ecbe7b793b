package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itohio/drumpads/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDAC struct {
	mu     sync.Mutex
	levels []uint16
	fail   bool
}

func (d *recordingDAC) Write(level uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.levels = append(d.levels, level)
	if d.fail {
		return errors.New("dac busy")
	}
	return nil
}

func (d *recordingDAC) Levels() []uint16 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]uint16, len(d.levels))
	copy(out, d.levels)
	return out
}

type countingPacer struct {
	resets int
	waits  []int
}

func (p *countingPacer) Reset()     { p.resets++ }
func (p *countingPacer) Wait(n int) { p.waits = append(p.waits, n) }

func TestEncoder(t *testing.T) {
	tests := []struct {
		name string
		bits uint8
		in   int16
		want uint16
	}{
		{name: "zero is mid-scale 10 bit", bits: 10, in: 0, want: 512},
		{name: "min 10 bit", bits: 10, in: -32768, want: 0},
		{name: "max 10 bit", bits: 10, in: 32767, want: 1023},
		{name: "zero 8 bit", bits: 8, in: 0, want: 128},
		{name: "max 16 bit", bits: 16, in: 32767, want: 65535},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encoder{Bits: tt.bits}.Level(tt.in))
		})
	}
	assert.Equal(t, uint16(512), Encoder{Bits: 10}.Silence())
}

func TestRender_WritesEverySampleThenSilence(t *testing.T) {
	for _, length := range []int{0, 1, 7, 300} {
		samples := make([]int16, length)
		for i := range samples {
			samples[i] = int16(i * 100)
		}

		dac := &recordingDAC{}
		pacer := &countingPacer{}
		r := NewRenderer(dac, Bank{}, notify.NewMailbox[Request](), pacer, Encoder{Bits: 10})
		r.Render(NewBuffer(samples))

		levels := dac.Levels()
		require.Len(t, levels, length+1, "length %d", length)
		for i, s := range samples {
			assert.Equal(t, Encoder{Bits: 10}.Level(s), levels[i])
		}
		assert.Equal(t, uint16(512), levels[length])
		assert.Equal(t, 1, pacer.resets)
		assert.Len(t, pacer.waits, length+1)
		assert.Equal(t, uint32(1), r.Stats().Played)
	}
}

func TestPlay_UnknownSoundOnlySilences(t *testing.T) {
	dac := &recordingDAC{}
	r := NewRenderer(dac, Bank{}, notify.NewMailbox[Request](), &countingPacer{}, Encoder{Bits: 10})

	r.Play(Snare)

	assert.Equal(t, []uint16{512}, dac.Levels())
	assert.Equal(t, uint32(1), r.Stats().Unknown)
	assert.Equal(t, uint32(0), r.Stats().Played)
}

func TestRender_WriteErrorsAreCounted(t *testing.T) {
	dac := &recordingDAC{fail: true}
	r := NewRenderer(dac, Bank{}, notify.NewMailbox[Request](), &countingPacer{}, Encoder{Bits: 10})

	r.Render(NewBuffer([]int16{1, 2, 3}))

	assert.Len(t, dac.Levels(), 4)
	assert.Equal(t, uint32(4), r.Stats().WriteErrors)
}

// gatedPacer blocks the first Wait for sample gateAt until released.
type gatedPacer struct {
	gateAt  int
	gated   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newGatedPacer(gateAt int) *gatedPacer {
	return &gatedPacer{gateAt: gateAt, entered: make(chan struct{}), release: make(chan struct{})}
}

func (p *gatedPacer) Reset() {}

func (p *gatedPacer) Wait(n int) {
	if n == p.gateAt && p.gated.CompareAndSwap(false, true) {
		close(p.entered)
		<-p.release
	}
}

func TestRun_RequestDuringPlaybackWaitsForCurrentBuffer(t *testing.T) {
	bank := Bank{
		Snare: NewBuffer([]int16{1000, 2000}),
		HiHat: NewBuffer([]int16{-1000, -2000}),
	}
	dac := &recordingDAC{}
	requests := notify.NewMailbox[Request]()
	pacer := newGatedPacer(1)
	r := NewRenderer(dac, bank, requests, pacer, Encoder{Bits: 10})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	requests.Post(RequestOf(HiHat))
	select {
	case <-pacer.entered:
	case <-time.After(time.Second):
		t.Fatal("playback did not start")
	}

	// Mid-buffer: the first sample is out, the rest is pending.
	assert.Len(t, dac.Levels(), 1)
	requests.Post(RequestOf(HiHat))
	requests.Post(RequestOf(Snare))
	assert.Equal(t, uint32(1), requests.Overwritten())
	close(pacer.release)

	assert.Eventually(t, func() bool { return r.Stats().Played == 2 }, time.Second, time.Millisecond)

	enc := Encoder{Bits: 10}
	assert.Equal(t, []uint16{
		enc.Level(-1000), enc.Level(-2000), enc.Silence(),
		enc.Level(1000), enc.Level(2000), enc.Silence(),
	}, dac.Levels())
}

func TestRun_ServesRequestsSequentially(t *testing.T) {
	bank := Bank{
		Snare: NewBuffer([]int16{1000, 2000}),
		HiHat: NewBuffer([]int16{-1000}),
	}
	dac := &recordingDAC{}
	requests := notify.NewMailbox[Request]()
	r := NewRenderer(dac, bank, requests, &countingPacer{}, Encoder{Bits: 10})

	var mu sync.Mutex
	var order []SoundID
	r.OnPlay = func(id SoundID) {
		mu.Lock()
		order = append(order, id)
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	requests.Post(RequestOf(Snare))
	assert.Eventually(t, func() bool { return r.Stats().Played == 1 }, time.Second, time.Millisecond)
	requests.Post(RequestOf(HiHat))
	assert.Eventually(t, func() bool { return r.Stats().Played == 2 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	assert.Equal(t, []SoundID{Snare, HiHat}, order)
	mu.Unlock()
	// snare: 2 samples + silence, hihat: 1 sample + silence
	assert.Len(t, dac.Levels(), 5)
}

func TestDefaultBank(t *testing.T) {
	bank, err := DefaultBank()
	require.NoError(t, err)

	snare, ok := bank.Lookup(Snare)
	require.True(t, ok)
	assert.Equal(t, 2400, snare.Len())

	hihat, ok := bank.Lookup(HiHat)
	require.True(t, ok)
	assert.Equal(t, 1200, hihat.Len())

	_, ok = bank.Lookup(None)
	assert.False(t, ok)
}

func TestDecodePCM(t *testing.T) {
	buf, err := DecodePCM([]byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80})
	require.NoError(t, err)
	require.Equal(t, 3, buf.Len())
	assert.Equal(t, int16(1), buf.At(0))
	assert.Equal(t, int16(-1), buf.At(1))
	assert.Equal(t, int16(-32768), buf.At(2))

	_, err = DecodePCM([]byte{0x01})
	assert.Error(t, err)
}

func TestParseSoundID(t *testing.T) {
	tests := []struct {
		in      string
		want    SoundID
		wantErr bool
	}{
		{in: "snare", want: Snare},
		{in: "Snare ", want: Snare},
		{in: "hihat", want: HiHat},
		{in: "hi-hat", want: HiHat},
		{in: "kick", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSoundID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, name string) SoundID {
	t.Helper()
	id, err := ParseSoundID(name)
	require.NoError(t, err)
	return id
}

func TestDeadlinePacer(t *testing.T) {
	now := time.Unix(0, 0)
	var slept time.Duration
	p := NewDeadlinePacer(125*time.Microsecond, 50*time.Microsecond)
	p.now = func() time.Time {
		now = now.Add(5 * time.Microsecond)
		return now
	}
	p.sleep = func(d time.Duration) {
		slept += d
		now = now.Add(d)
	}

	p.Reset()
	start := now
	for i := range 8 {
		p.Wait(i)
		assert.False(t, now.Before(start.Add(time.Duration(i)*125*time.Microsecond)), "sample %d released early", i)
	}
	// Sample 7 is due 875µs after start; no drift beyond one clock step.
	assert.WithinDuration(t, start.Add(875*time.Microsecond), now, 10*time.Microsecond)
	assert.Greater(t, slept, time.Duration(0))
}

func TestRun_RequestPlaysEverySoundInOrder(t *testing.T) {
	bank := Bank{
		Snare: NewBuffer([]int16{1000, 2000, 3000}),
		HiHat: NewBuffer([]int16{-1000, -2000}),
	}
	dac := &recordingDAC{}
	requests := notify.NewMailbox[Request]()
	r := NewRenderer(dac, bank, requests, &countingPacer{}, Encoder{Bits: 10})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	requests.Post(RequestOf(Snare, HiHat))
	assert.Eventually(t, func() bool { return r.Stats().Played == 2 }, time.Second, time.Millisecond)

	enc := Encoder{Bits: 10}
	want := []uint16{
		enc.Level(1000), enc.Level(2000), enc.Level(3000), 512,
		enc.Level(-1000), enc.Level(-2000), 512,
	}
	assert.Equal(t, want, dac.Levels())
}

func TestRequest(t *testing.T) {
	var r Request
	assert.Equal(t, 0, r.Len())

	for i := range MaxRequestSounds {
		assert.True(t, r.Add(SoundID(i%2+1)))
	}
	assert.False(t, r.Add(Snare), "request must not grow past its capacity")
	assert.Equal(t, MaxRequestSounds, r.Len())
	assert.Equal(t, Snare, r.At(0))
	assert.Equal(t, HiHat, r.At(1))

	assert.Panics(t, func() { RequestOf(Snare).At(1) })
}
