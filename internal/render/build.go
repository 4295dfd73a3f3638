package render

import (
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"energy-insights/internal/calc"
	"energy-insights/internal/dataset"
	"energy-insights/internal/view"
)

const maxTicks = 12

func (r *Renderer) renderXY(w io.Writer, c dataset.Chart, format Format) error {
	lo, hi, ok := c.Data.Bounds()
	if !ok {
		return ErrNothingToRender
	}
	for _, a := range c.Annotations {
		lo, hi = math.Min(lo, a.Value), math.Max(hi, a.Value)
	}

	n := len(c.Data.Labels)
	series := make([]chart.Series, 0, len(c.Data.Series)+len(c.Annotations))
	bars := 0
	for _, s := range c.Data.Series {
		if s.Kind == dataset.KindBar {
			bars++
		}
	}

	// Bars go first so lines are painted over them.
	for i, s := range c.Data.Series {
		if s.Kind != dataset.KindBar {
			continue
		}
		series = append(series, barSeries{
			name:   s.Name,
			style:  seriesStyle(s),
			points: points(c.Data, i),
			width:  0.7 / float64(bars),
		})
	}
	for i, s := range c.Data.Series {
		if s.Kind == dataset.KindBar {
			continue
		}
		pts, gaps := linePoints(c.Data, i)
		series = append(series, lineSeries{
			name:     s.Name,
			style:    seriesStyle(s),
			points:   pts,
			gapAfter: gaps,
			dot:      3,
		})
	}
	for _, a := range c.Annotations {
		style := chart.Style{
			StrokeColor: colorOr(a.Color, drawing.ColorRed),
			StrokeWidth: 2,
		}
		if a.Dashed {
			style.StrokeDashArray = []float64{5, 5}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    a.Label,
			Style:   style,
			XValues: []float64{-0.5, float64(n) - 0.5},
			YValues: []float64{a.Value, a.Value},
		})
	}

	graph := chart.Chart{
		Title:  c.Title,
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  c.X.Title,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: categoryTicks(c.Data.Labels),
		},
		YAxis: chart.YAxis{
			Name:           c.Y.Title,
			Range:          yRange(c.Y, lo, hi),
			ValueFormatter: tickFormatter(c.Y.Format),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(format.provider(), w)
}

func (r *Renderer) renderStacked(w io.Writer, c dataset.Chart, format Format) error {
	if _, _, ok := c.Data.Bounds(); !ok {
		return ErrNothingToRender
	}

	bars := make([]chart.StackedBar, 0, len(c.Data.Labels))
	for i, label := range c.Data.Labels {
		bar := chart.StackedBar{Name: label}
		for _, s := range c.Data.Series {
			v := s.Values[i]
			if !v.Valid || v.Value <= 0 {
				continue
			}
			fill := colorOr(s.Style.Fill, colorOr(s.Style.Color, fallbackColor))
			bar.Values = append(bar.Values, chart.Value{
				Label: s.Name,
				Value: v.Value,
				Style: chart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
			})
		}
		if len(bar.Values) > 0 {
			bars = append(bars, bar)
		}
	}
	if len(bars) == 0 {
		return ErrNothingToRender
	}

	graph := chart.StackedBarChart{
		Title:      c.Title,
		Width:      r.opts.Width,
		Height:     r.opts.Height,
		BarSpacing: 10,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Bars: bars,
	}
	return graph.Render(format.provider(), w)
}

func (r *Renderer) renderPie(w io.Writer, c dataset.Chart, format Format) error {
	if len(c.Data.Series) == 0 {
		return ErrNothingToRender
	}

	values := make([]chart.Value, 0, len(c.Data.Labels))
	var total float64
	for i, label := range c.Data.Labels {
		v := c.Data.Series[0].Values[i]
		if !v.Valid || v.Value <= 0 {
			continue
		}
		total += v.Value
		fill := fallbackColor
		if len(c.Palette) > 0 {
			fill = colorOr(c.Palette[i%len(c.Palette)], fallbackColor)
		}
		values = append(values, chart.Value{
			Label: label,
			Value: v.Value,
			Style: chart.Style{FillColor: fill, StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}
	if total <= 0 {
		return ErrNothingToRender
	}

	graph := chart.PieChart{
		Title:  c.Title,
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Values: values,
	}
	return graph.Render(format.provider(), w)
}

func seriesStyle(s dataset.Series) chart.Style {
	stroke := colorOr(s.Style.Color, fallbackColor)
	style := chart.Style{
		StrokeColor: stroke,
		FillColor:   colorOr(s.Style.Fill, stroke),
		StrokeWidth: math.Max(s.Style.Width, 1),
	}
	if s.Style.Dashed {
		style.StrokeDashArray = []float64{5, 5}
	}
	return style
}

// points collects the present samples of series si with their resolved colours.
func points(ds dataset.Dataset, si int) []point {
	styles := calc.PointStyles(ds, si)
	out := make([]point, 0, len(ds.Labels))
	for i, v := range ds.Series[si].Values {
		if !v.Valid {
			continue
		}
		out = append(out, point{x: float64(i), y: v.Value, color: colorOr(styles[i].Color, fallbackColor)})
	}
	return out
}

// linePoints is points plus where the line must break.
func linePoints(ds dataset.Dataset, si int) ([]point, []bool) {
	pts := points(ds, si)
	gaps := make([]bool, len(pts))
	for i := 0; i+1 < len(pts); i++ {
		gaps[i] = pts[i+1].x-pts[i].x > 1
	}
	return pts, gaps
}

func categoryTicks(labels []string) []chart.Tick {
	step := 1
	if len(labels) > maxTicks {
		step = int(math.Ceil(float64(len(labels)) / maxTicks))
	}
	ticks := make([]chart.Tick, 0, len(labels)/step+1)
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	return ticks
}

// yRange honours fixed bounds and pads automatic ones so a flat series still
// has a non-zero span.
func yRange(axis dataset.Axis, lo, hi float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.1, 1)
	}
	lower, upper := lo-pad, hi+pad
	if lo >= 0 && lower < 0 {
		lower = 0
	}
	if axis.Min != nil {
		lower = *axis.Min
	}
	if axis.Max != nil {
		upper = *axis.Max
	}
	if upper <= lower {
		upper = lower + pad
	}
	return &chart.ContinuousRange{Min: lower, Max: upper}
}

func tickFormatter(f dataset.TickFormat) chart.ValueFormatter {
	format := func(v float64) string { return chart.FloatValueFormatterWithFormat(v, "%.2f") }
	switch f {
	case dataset.TickThousands:
		format = view.FormatThousands
	case dataset.TickCurrency:
		format = view.FormatCurrency
	}
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return format(f)
		}
		return chart.FloatValueFormatter(v)
	}
}
