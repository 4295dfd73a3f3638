package calc

import (
	"fmt"

	"energy-insights/internal/dataset"
)

const (
	// KWHPerTonneLimit is the IF-average KWH/tonne alert line.
	KWHPerTonneLimit = 675.0
	// SpecificConsumptionCeiling is the contractual kWh per tonne of molten metal.
	SpecificConsumptionCeiling = 1020.0

	AlertColor    = "#FF0000"
	OverSpecColor = "#FF5252"
	NormalColor   = "#2196F3"
)

// Exceeds reports whether v is strictly above threshold. v == threshold is not flagged.
func Exceeds(v, threshold float64) bool {
	return v > threshold
}

// Flags classifies every present sample against threshold. Nulls are never flagged.
func Flags(values []dataset.Sample, threshold float64) []bool {
	flags := make([]bool, len(values))
	for i, v := range values {
		flags[i] = v.Valid && Exceeds(v.Value, threshold)
	}
	return flags
}

// ThresholdLine is the overlay descriptor for a threshold.
func ThresholdLine(threshold float64) dataset.Annotation {
	return dataset.Annotation{
		Label:  fmt.Sprintf("Threshold (%g)", threshold),
		Value:  threshold,
		Color:  AlertColor,
		Dashed: true,
	}
}

// Annotate attaches an above-threshold rule to s and returns the matching overlay.
func Annotate(s dataset.Series, threshold float64) (dataset.Series, dataset.Annotation) {
	s.Rule = dataset.Rule{
		Kind:       dataset.RuleAbove,
		Threshold:  threshold,
		AlertColor: AlertColor,
	}
	return s, ThresholdLine(threshold)
}

// SpecificConsumption returns kWh per tonne given consumption (kWh) and
// molten metal (kg). ok is false when the tonnage is not positive.
func SpecificConsumption(consumption, moltenKg float64) (float64, bool) {
	if moltenKg <= 0 {
		return 0, false
	}
	return consumption / (moltenKg / 1000), true
}

// IsOverSpec reports whether specific consumption is above ceiling. A day with
// no positive molten metal output has undefined specific consumption and is
// flagged so it stands out for review.
func IsOverSpec(consumption, moltenKg, ceiling float64) bool {
	perTonne, ok := SpecificConsumption(consumption, moltenKg)
	if !ok {
		return true
	}
	return perTonne > ceiling
}
