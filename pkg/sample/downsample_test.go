package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplesOf(values ...float64) []Sample {
	now := time.Now()
	out := make([]Sample, len(values))
	for i, v := range values {
		out[i] = Sample{Timestamp: now.Add(time.Duration(i) * time.Millisecond), Volts: []float64{v, 0}}
	}
	return out
}

func TestDownsampleSamples_NoDownsampling(t *testing.T) {
	samples := samplesOf(1.0, 1.1, 1.2)

	result := DownsampleSamples(nil, samples, 10)
	require.Equal(t, 3, len(result))
	assert.Equal(t, samples, result)

	dst := make([]Sample, 0, 10)
	result = DownsampleSamples(dst, samples, 10)
	require.Equal(t, 3, len(result))
	assert.Equal(t, cap(dst), cap(result), "should reuse dst")
}

func TestDownsampleSamples_KeepsPeaks(t *testing.T) {
	values := make([]float64, 100)
	values[37] = 2.5 // single-frame strike
	values[91] = 1.2
	samples := samplesOf(values...)

	result := DownsampleSamples(make([]Sample, 0, 20), samples, 10)
	require.Len(t, result, 10)

	var peaks []float64
	for _, s := range result {
		if s.Max() > 0 {
			peaks = append(peaks, s.Max())
		}
	}
	assert.Equal(t, []float64{2.5, 1.2}, peaks)

	// Output stays in time order.
	for i := 1; i < len(result); i++ {
		assert.True(t, result[i].Timestamp.After(result[i-1].Timestamp))
	}
}

func TestDownsampleSamples_AllocatesWhenDstTooSmall(t *testing.T) {
	samples := samplesOf(make([]float64, 50)...)
	dst := make([]Sample, 0, 2)
	result := DownsampleSamples(dst, samples, 10)
	assert.Len(t, result, 10)
	assert.GreaterOrEqual(t, cap(result), 10)
}

func TestDownsampleSamples_Empty(t *testing.T) {
	assert.Empty(t, DownsampleSamples(nil, nil, 10))
}
