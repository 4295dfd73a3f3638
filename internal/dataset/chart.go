package dataset

// ChartKind selects the overall chart shape.
type ChartKind string

const (
	ChartLine       ChartKind = "line"
	ChartCombo      ChartKind = "combo"
	ChartStackedBar ChartKind = "stacked_bar"
	ChartPie        ChartKind = "pie"
)

// TickFormat selects an axis tick label format.
type TickFormat string

const (
	TickPlain     TickFormat = ""
	TickThousands TickFormat = "thousands"
	TickCurrency  TickFormat = "currency"
)

// Axis describes one chart axis. Nil bounds mean auto-scale.
type Axis struct {
	Title   string     `json:"title,omitempty"`
	Min     *float64   `json:"min,omitempty"`
	Max     *float64   `json:"max,omitempty"`
	Stacked bool       `json:"stacked,omitempty"`
	Format  TickFormat `json:"format,omitempty"`
}

// Annotation is a horizontal reference line drawn over the plot.
type Annotation struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Color  string  `json:"color"`
	Dashed bool    `json:"dashed"`
}

// Chart is a dataset plus the options a renderer needs to paint it.
type Chart struct {
	Kind        ChartKind    `json:"kind"`
	Title       string       `json:"title,omitempty"`
	Data        Dataset      `json:"data"`
	X           Axis         `json:"x"`
	Y           Axis         `json:"y"`
	Annotations []Annotation `json:"annotations,omitempty"`
	// Palette colours categories (pie slices) rather than series.
	Palette []string `json:"palette,omitempty"`
}

// Clone deep-copies the chart.
func (c Chart) Clone() Chart {
	out := c
	out.Data = c.Data.Clone()
	out.Annotations = append([]Annotation(nil), c.Annotations...)
	out.Palette = append([]string(nil), c.Palette...)
	if c.Y.Min != nil {
		out.Y.Min = Float(*c.Y.Min)
	}
	if c.Y.Max != nil {
		out.Y.Max = Float(*c.Y.Max)
	}
	return out
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
