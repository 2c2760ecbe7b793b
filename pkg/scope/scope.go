// Package scope provides an oscilloscope-style Fyne widget showing one trace
// per pad, the hit threshold and detected hits.
package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/drumpads/pkg/config"
	"github.com/itohio/drumpads/pkg/monitor"
	"github.com/itohio/drumpads/pkg/sample"
)

// TraceColors are assigned to pads in configuration order.
var TraceColors = []color.RGBA{
	{R: 255, G: 165, B: 0, A: 255},   // Orange
	{R: 100, G: 200, B: 255, A: 255}, // Light blue
	{R: 120, G: 220, B: 120, A: 255}, // Green
	{R: 230, G: 100, B: 230, A: 255}, // Magenta
}

// ScopeWidget is a custom Fyne widget that displays pad signals.
type ScopeWidget struct {
	widget.BaseWidget

	cfg   *config.Config
	names []string

	// Data (protected by mu)
	mu             sync.RWMutex
	displaySamples []sample.Sample // Downsampled, reused between updates
	hits           []monitor.Hit

	yMax       float64 // Volts; the axis always starts at zero
	threshold  float64 // Volts
	xMin, xMax time.Time

	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	names := make([]string, len(cfg.Pads))
	for i, p := range cfg.Pads {
		names[i] = p.Name
	}

	maxPoints := cfg.Monitor.MaxDisplayPoints
	if maxPoints <= 0 {
		maxPoints = 1000
	}

	s := &ScopeWidget{
		cfg:              cfg,
		names:            names,
		displaySamples:   make([]sample.Sample, 0, maxPoints),
		yMax:             float64(cfg.Sampling.ReferenceMV) / 1000,
		threshold:        float64(cfg.Detection.ThresholdMV) / 1000,
		maxDisplayPoints: maxPoints,
	}
	s.xMin = time.Now()
	s.xMax = s.xMin.Add(s.window())
	s.ExtendBaseWidget(s)
	return s
}

// UpdateData updates the widget with the monitor's window.
// This should be called from the monitor callback using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample, hits []monitor.Hit) {
	s.mu.Lock()
	s.displaySamples = sample.DownsampleSamples(s.displaySamples, samples, s.maxDisplayPoints)
	s.hits = hits
	s.updateTimeAxis()
	s.mu.Unlock()

	s.Refresh()
}

// updateTimeAxis keeps the newest sample at the right edge of a window of
// fixed width.
func (s *ScopeWidget) updateTimeAxis() {
	if len(s.displaySamples) == 0 {
		return
	}
	s.xMax = s.displaySamples[len(s.displaySamples)-1].Timestamp
	s.xMin = s.xMax.Add(-s.window())
	if first := s.displaySamples[0].Timestamp; first.After(s.xMin) && s.xMax.Sub(first) < s.window() {
		s.xMin = first
		s.xMax = first.Add(s.window())
	}
}

func (s *ScopeWidget) window() time.Duration {
	w := time.Duration(s.cfg.Monitor.WindowSeconds * float64(time.Second))
	if w <= 0 {
		w = 5 * time.Second
	}
	return w
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
