package calc

import (
	"math"

	"energy-insights/internal/dataset"
)

// MinOf returns the smallest present sample.
func MinOf(values ...[]dataset.Sample) (float64, bool) {
	lo, ok := math.Inf(1), false
	for _, seq := range values {
		for _, v := range seq {
			if v.Valid {
				lo = math.Min(lo, v.Value)
				ok = true
			}
		}
	}
	return lo, ok
}

// FlooredMin returns max(0, min(values) - pad), or nil when nothing is present.
func FlooredMin(pad float64, values ...[]dataset.Sample) *float64 {
	lo, ok := MinOf(values...)
	if !ok {
		return nil
	}
	return dataset.Float(math.Max(0, lo-pad))
}
