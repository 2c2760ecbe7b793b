package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/itohio/drumpads/pkg/monitor"
	"github.com/itohio/drumpads/pkg/sample"
)

const (
	marginLeft   = 60
	marginRight  = 20
	marginTop    = 20
	marginBottom = 40
)

var (
	gridColor      = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor     = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	thresholdColor = color.RGBA{R: 200, G: 40, B: 40, A: 255}
)

// plot maps times and volts onto the drawing area.
type plot struct {
	x, y, w, h float32
	yMax       float64
	xMin, xMax time.Time
}

func newPlot(size fyne.Size, yMax float64, xMin, xMax time.Time) plot {
	return plot{
		x:    marginLeft,
		y:    marginTop,
		w:    size.Width - marginLeft - marginRight,
		h:    size.Height - marginTop - marginBottom,
		yMax: yMax,
		xMin: xMin,
		xMax: xMax,
	}
}

func (p plot) X(t time.Time) float32 {
	span := p.xMax.Sub(p.xMin).Seconds()
	if span <= 0 {
		return p.x
	}
	return p.x + float32(t.Sub(p.xMin).Seconds()/span)*p.w
}

// Y clamps v to the axis range.
func (p plot) Y(v float64) float32 {
	v = min(max(v, 0), p.yMax)
	return p.y + p.h - float32(v/p.yMax)*p.h
}

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	grid    *canvas.Rectangle
	objects []fyne.CanvasObject

	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds every canvas object from the current data.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.displaySamples
	hits := r.scope.hits
	p := newPlot(r.scope.Size(), r.scope.yMax, r.scope.xMin, r.scope.xMax)
	threshold := r.scope.threshold
	names := r.scope.names
	r.scope.mu.RUnlock()

	r.objects = []fyne.CanvasObject{r.grid}
	if p.w <= 0 || p.h <= 0 {
		return
	}

	r.drawGrid(p)
	r.drawThreshold(p, threshold)
	for i := range names {
		r.drawTrace(p, samples, i, TraceColors[i%len(TraceColors)])
	}
	r.drawHits(p, hits, names)
	r.drawLegend(p, names)
}

func (r *scopeRenderer) drawGrid(p plot) {
	const numHLines, numVLines = 6, 10

	for i := range numHLines + 1 {
		y := p.y + float32(i)*p.h/numHLines
		r.line(fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y), gridColor, 1)

		value := p.yMax - float64(i)*p.yMax/numHLines
		r.text(formatVoltage(value), labelColor, 10, fyne.TextAlignTrailing, fyne.NewPos(p.x-5, y-6))
	}

	span := p.xMax.Sub(p.xMin)
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.w/numVLines
		r.line(fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h), gridColor, 1)

		offset := span * time.Duration(i) / numVLines
		r.text(formatTime(offset), labelColor, 10, fyne.TextAlignCenter, fyne.NewPos(x-20, p.y+p.h+5))
	}
}

func (r *scopeRenderer) drawThreshold(p plot, threshold float64) {
	y := p.Y(threshold)
	r.line(fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y), thresholdColor, 1)
}

// drawTrace draws pad i's values as connected segments.
func (r *scopeRenderer) drawTrace(p plot, samples []sample.Sample, i int, c color.RGBA) {
	var prev fyne.Position
	havePrev := false
	for _, s := range samples {
		if i >= len(s.Volts) {
			havePrev = false
			continue
		}
		pos := fyne.NewPos(p.X(s.Timestamp), p.Y(s.Volts[i]))
		if havePrev {
			r.line(prev, pos, c, 1.5)
		}
		prev, havePrev = pos, true
	}
}

// drawHits draws a vertical marker in the pad's colour at every hit.
func (r *scopeRenderer) drawHits(p plot, hits []monitor.Hit, names []string) {
	for _, h := range hits {
		if h.Time.Before(p.xMin) || h.Time.After(p.xMax) {
			continue
		}
		c := TraceColors[h.Pad%len(TraceColors)]
		x := p.X(h.Time)
		r.line(fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h), c, 1)

		label := formatVoltage(h.Volts)
		if h.Pad < len(names) {
			label = names[h.Pad] + " " + label
		}
		r.text(label, c, 11, fyne.TextAlignCenter, fyne.NewPos(x-30, p.Y(h.Volts)-15))
	}
}

func (r *scopeRenderer) drawLegend(p plot, names []string) {
	for i, name := range names {
		c := TraceColors[i%len(TraceColors)]
		r.text(name, c, 12, fyne.TextAlignLeading, fyne.NewPos(p.x+10+float32(i)*40, p.y+5))
	}
}

func (r *scopeRenderer) line(a, b fyne.Position, c color.Color, width float32) {
	line := canvas.NewLine(c)
	line.Position1 = a
	line.Position2 = b
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *scopeRenderer) text(s string, c color.Color, size float32, align fyne.TextAlign, pos fyne.Position) {
	text := canvas.NewText(s, c)
	text.TextSize = size
	text.Alignment = align
	text.Move(pos)
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

func formatVoltage(v float64) string {
	return fmt.Sprintf("%.2fV", v)
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
