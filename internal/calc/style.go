package calc

import "energy-insights/internal/dataset"

// PointStyle is the resolved look of one point.
type PointStyle struct {
	Color   string `json:"color"`
	Flagged bool   `json:"flagged"`
}

// StyleAt evaluates the rule of series s for point i against the snapshot ds.
// It holds no state; the same snapshot always yields the same style.
func StyleAt(ds dataset.Dataset, s, i int) PointStyle {
	if s < 0 || s >= len(ds.Series) {
		return PointStyle{}
	}
	series := ds.Series[s]
	base := PointStyle{Color: series.Style.Color}
	if series.Style.Fill != "" && series.Kind == dataset.KindBar {
		base.Color = series.Style.Fill
	}
	if i < 0 || i >= len(series.Values) || !series.Values[i].Valid {
		return base
	}

	if flagged(ds, series, i) {
		color := series.Rule.AlertColor
		if color == "" {
			color = AlertColor
		}
		return PointStyle{Color: color, Flagged: true}
	}
	return base
}

// PointStyles resolves every point of series s.
func PointStyles(ds dataset.Dataset, s int) []PointStyle {
	if s < 0 || s >= len(ds.Series) {
		return nil
	}
	out := make([]PointStyle, len(ds.Series[s].Values))
	for i := range out {
		out[i] = StyleAt(ds, s, i)
	}
	return out
}

func flagged(ds dataset.Dataset, series dataset.Series, i int) bool {
	v := series.Values[i].Value
	switch series.Rule.Kind {
	case dataset.RuleAbove:
		return Exceeds(v, series.Rule.Threshold)
	case dataset.RuleRatioAbove:
		d := series.Rule.Denominator
		if d < 0 || d >= len(ds.Series) || i >= len(ds.Series[d].Values) {
			return false
		}
		den := ds.Series[d].Values[i]
		if !den.Valid {
			return false
		}
		scale := series.Rule.Scale
		if scale == 0 {
			scale = 1
		}
		return IsOverSpec(v, den.Value*1000/scale, series.Rule.Threshold)
	default:
		return false
	}
}
