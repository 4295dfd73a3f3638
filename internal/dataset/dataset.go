package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Sample is one slot of a series. The zero value is null, which renders as a
// gap and never as zero.
type Sample struct {
	Value float64
	Valid bool
}

// Num returns a present sample.
func Num(v float64) Sample {
	return Sample{Value: v, Valid: true}
}

// Null returns a missing sample.
func Null() Sample {
	return Sample{}
}

// FromPtr maps nil to null.
func FromPtr(v *float64) Sample {
	if v == nil {
		return Null()
	}
	return Num(*v)
}

// MarshalJSON encodes null samples as JSON null.
func (s Sample) MarshalJSON() ([]byte, error) {
	if !s.Valid || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// MarshalYAML mirrors MarshalJSON so YAML output keeps nulls.
func (s Sample) MarshalYAML() (interface{}, error) {
	if !s.Valid || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return nil, nil
	}
	return s.Value, nil
}

// UnmarshalJSON accepts a number or null.
func (s *Sample) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Null()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	*s = Num(v)
	return nil
}

// SeriesKind selects how a series is drawn.
type SeriesKind string

const (
	KindLine SeriesKind = "line"
	KindBar  SeriesKind = "bar"
)

// Style is the static look of a series. Per-point colours come from Rule.
type Style struct {
	Color  string  `json:"color"`
	Fill   string  `json:"fill,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Dashed bool    `json:"dashed,omitempty"`
}

// RuleKind names a per-point classification rule.
type RuleKind string

const (
	RuleNone RuleKind = ""
	// RuleAbove flags a point whose value is strictly greater than Threshold.
	RuleAbove RuleKind = "above"
	// RuleRatioAbove flags a point when value / (Series[Denominator] / Scale)
	// is strictly greater than Threshold.
	RuleRatioAbove RuleKind = "ratio_above"
)

// Rule is a declarative per-point styling rule evaluated at render time.
type Rule struct {
	Kind        RuleKind `json:"kind,omitempty"`
	Threshold   float64  `json:"threshold,omitempty"`
	Denominator int      `json:"denominator,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	AlertColor  string   `json:"alertColor,omitempty"`
}

// Series is a named, styled sequence of samples aligned with Dataset.Labels.
type Series struct {
	Name   string     `json:"name"`
	Kind   SeriesKind `json:"kind"`
	Values []Sample   `json:"values"`
	Style  Style      `json:"style"`
	Stack  string     `json:"stack,omitempty"`
	Rule   Rule       `json:"rule,omitempty"`
}

// Dataset is the chart-ready aggregate shared by every panel.
type Dataset struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Empty returns a dataset with no labels and no series.
func Empty() Dataset {
	return Dataset{Labels: []string{}, Series: []Series{}}
}

// IsEmpty reports whether there is nothing to draw.
func (d Dataset) IsEmpty() bool {
	return len(d.Labels) == 0 || len(d.Series) == 0
}

// Validate enforces that every series is as long as the label axis.
func (d Dataset) Validate() error {
	for i, s := range d.Series {
		if len(s.Values) != len(d.Labels) {
			return fmt.Errorf("series %d (%s): %d values for %d labels", i, s.Name, len(s.Values), len(d.Labels))
		}
		if s.Rule.Kind == RuleRatioAbove && (s.Rule.Denominator < 0 || s.Rule.Denominator >= len(d.Series)) {
			return fmt.Errorf("series %d (%s): ratio rule references missing series %d", i, s.Name, s.Rule.Denominator)
		}
	}
	return nil
}

// Clone returns a deep copy so snapshots can be read while the owner moves on.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Labels: append([]string{}, d.Labels...),
		Series: make([]Series, len(d.Series)),
	}
	for i, s := range d.Series {
		s.Values = append([]Sample{}, s.Values...)
		out.Series[i] = s
	}
	return out
}

// Bounds returns the min and max of all present samples.
func (d Dataset) Bounds() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range d.Series {
		for _, v := range s.Values {
			if !v.Valid {
				continue
			}
			ok = true
			lo = math.Min(lo, v.Value)
			hi = math.Max(hi, v.Value)
		}
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}
