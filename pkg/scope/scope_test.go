package scope

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/monitor"
	"github.com/itohio/drumpads/pkg/sample"
)

func TestPlot_Mapping(t *testing.T) {
	start := time.Unix(100, 0)
	p := newPlot(fyne.NewSize(480, 360), 3.3, start, start.Add(10*time.Second))

	assert.Equal(t, float32(marginLeft), p.X(start))
	assert.InDelta(t, marginLeft+200, p.X(start.Add(5*time.Second)), 0.01)
	assert.Equal(t, float32(marginTop+300), p.Y(0))
	assert.Equal(t, float32(marginTop), p.Y(3.3))
	assert.Equal(t, float32(marginTop), p.Y(10), "values above the axis are clamped")
	assert.Equal(t, float32(marginTop+300), p.Y(-1))
}

func TestPlot_EmptySpan(t *testing.T) {
	start := time.Unix(100, 0)
	p := newPlot(fyne.NewSize(480, 360), 3.3, start, start)
	assert.Equal(t, float32(marginLeft), p.X(start.Add(time.Second)))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0.40V", formatVoltage(0.4))
	assert.Equal(t, "3.30V", formatVoltage(3.3))
	assert.Equal(t, "0.50s", formatTime(500*time.Millisecond))
	assert.Equal(t, "2.5s", formatTime(2500*time.Millisecond))
}

func TestScopeWidget_UpdateData(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	cfg := config.Default()
	s := New(cfg)
	s.Resize(fyne.NewSize(600, 400))

	start := time.Unix(1000, 0)
	samples := []sample.Sample{
		{Timestamp: start, Volts: []float64{0, 0}},
		{Timestamp: start.Add(10 * time.Millisecond), Volts: []float64{1.2, 0}},
		{Timestamp: start.Add(20 * time.Millisecond), Volts: []float64{0.1, 0}},
	}
	hits := []monitor.Hit{{Pad: 0, Time: start.Add(10 * time.Millisecond), Volts: 1.2}}

	s.UpdateData(samples, hits)

	s.mu.RLock()
	assert.Equal(t, start, s.xMin)
	assert.Equal(t, start.Add(5*time.Second), s.xMax)
	assert.Len(t, s.displaySamples, 3)
	s.mu.RUnlock()

	r := test.WidgetRenderer(s)
	require.NotNil(t, r)
	r.Refresh()

	var labels []string
	for _, o := range r.Objects() {
		if txt, ok := o.(*canvas.Text); ok {
			labels = append(labels, txt.Text)
		}
	}
	assert.Contains(t, labels, "A 1.20V")
	assert.Contains(t, labels, "B")
}

func TestScopeWidget_ScrollsWithData(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	cfg := config.Default()
	cfg.Monitor.WindowSeconds = 1
	s := New(cfg)

	start := time.Unix(1000, 0)
	var samples []sample.Sample
	for i := range 30 {
		samples = append(samples, sample.Sample{Timestamp: start.Add(time.Duration(i) * 100 * time.Millisecond), Volts: []float64{0, 0}})
	}
	s.UpdateData(samples, nil)

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Equal(t, samples[29].Timestamp, s.xMax)
	assert.Equal(t, samples[29].Timestamp.Add(-time.Second), s.xMin)
}
