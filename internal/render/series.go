package render

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// point is one present sample at category index x.
type point struct {
	x, y  float64
	color drawing.Color
}

// lineSeries draws a polyline that breaks at missing samples, with one dot
// per present sample coloured individually.
type lineSeries struct {
	name     string
	style    chart.Style
	points   []point
	// gapAfter[i] is true when points[i] and points[i+1] are not adjacent.
	gapAfter []bool
	dot      float64
}

func (s lineSeries) GetName() string { return s.name }
func (s lineSeries) GetStyle() chart.Style { return s.style }
func (s lineSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s lineSeries) Len() int { return len(s.points) }
func (s lineSeries) GetValues(i int) (x, y float64) { return s.points[i].x, s.points[i].y }

func (s lineSeries) Validate() error {
	return nil
}

func (s lineSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	if len(s.points) == 0 {
		return
	}
	style := s.style.InheritFrom(defaults)

	r.SetStrokeColor(style.StrokeColor)
	r.SetStrokeWidth(style.StrokeWidth)
	r.SetStrokeDashArray(style.StrokeDashArray)

	open := false
	for i, p := range s.points {
		x, y := s.translate(canvasBox, xrange, yrange, p)
		if !open {
			r.MoveTo(x, y)
			open = true
		} else {
			r.LineTo(x, y)
		}
		if i == len(s.points)-1 || s.gapAfter[i] {
			r.Stroke()
			open = false
		}
	}

	if s.dot <= 0 {
		return
	}
	r.SetStrokeDashArray(nil)
	for _, p := range s.points {
		x, y := s.translate(canvasBox, xrange, yrange, p)
		r.SetFillColor(p.color)
		r.SetStrokeColor(p.color)
		r.Circle(s.dot, x, y)
		r.FillStroke()
	}
}

func (s lineSeries) translate(canvasBox chart.Box, xrange, yrange chart.Range, p point) (int, int) {
	return canvasBox.Left + xrange.Translate(p.x), canvasBox.Bottom - yrange.Translate(p.y)
}

// barSeries draws one bar per present sample, each with its own fill.
type barSeries struct {
	name   string
	style  chart.Style
	points []point
	// width is the share of a category slot a bar occupies.
	width  float64
}

func (s barSeries) GetName() string { return s.name }
func (s barSeries) GetStyle() chart.Style { return s.style }
func (s barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s barSeries) Len() int { return len(s.points) }
func (s barSeries) GetValues(i int) (x, y float64) { return s.points[i].x, s.points[i].y }

func (s barSeries) Validate() error {
	return nil
}

func (s barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	if len(s.points) == 0 {
		return
	}
	style := s.style.InheritFrom(defaults)

	slot := float64(xrange.GetDomain()) / math.Max(xrange.GetDelta(), 1)
	half := int(math.Max(1, slot*s.width/2))
	base := canvasBox.Bottom - yrange.Translate(math.Max(yrange.GetMin(), 0))

	for _, p := range s.points {
		x := canvasBox.Left + xrange.Translate(p.x)
		y := canvasBox.Bottom - yrange.Translate(p.y)
		top, bottom := y, base
		if top > bottom {
			top, bottom = bottom, top
		}
		bar := style
		bar.FillColor = p.color
		bar.StrokeColor = p.color
		chart.Draw.Box(r, chart.Box{Top: top, Left: x - half, Right: x + half, Bottom: bottom}, bar)
	}
}

var (
	_ chart.Series         = lineSeries{}
	_ chart.ValuesProvider = lineSeries{}
	_ chart.Series         = barSeries{}
	_ chart.ValuesProvider = barSeries{}
)
