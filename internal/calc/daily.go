package calc

import (
	"errors"
	"fmt"
	"sort"

	"energy-insights/internal/dataset"
	"energy-insights/internal/telemetry"
)

// ErrNoMatchingSlice indicates a day, department or machine selection has no data.
var ErrNoMatchingSlice = errors.New("no matching slice")

// Metric selects which hourly reading a daily slice plots.
type Metric string

const (
	MetricConsumption Metric = "consumption"
	MetricPowerFactor Metric = "F_F"
)

// ParseMetric accepts the wire names plus a few friendly aliases.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "", "consumption", "kwh":
		return MetricConsumption, nil
	case "F_F", "power_factor", "pf":
		return MetricPowerFactor, nil
	default:
		return "", fmt.Errorf("unknown metric %q (valid: consumption, F_F)", s)
	}
}

// Label is the human name used in series names and axis titles.
func (m Metric) Label() string {
	if m == MetricPowerFactor {
		return "Power Factor"
	}
	return "Consumption"
}

var machineColors = map[string]string{
	"IF1": "#2196F3",
	"IF2": "#FF5722",
	"MM1": "#4CAF50",
}

// MachineColor returns the fixed colour of a machine line.
func MachineColor(id string) string {
	if c, ok := machineColors[id]; ok {
		return c
	}
	return "#FFC107"
}

// SliceDaily builds a 24-hour multi-series dataset for one day and department.
// It returns an empty dataset and ErrNoMatchingSlice when the day or department
// is absent. Missing hours or metrics stay null.
func SliceDaily(days []telemetry.DailyConsumptionDay, date, department string, metric Metric) (dataset.Dataset, error) {
	var day *telemetry.DailyConsumptionDay
	for i := range days {
		if days[i].Date == date {
			day = &days[i]
			break
		}
	}
	if day == nil {
		return dataset.Empty(), fmt.Errorf("day %s: %w", date, ErrNoMatchingSlice)
	}
	machines, ok := day.Departments[department]
	if !ok {
		return dataset.Empty(), fmt.Errorf("day %s department %s: %w", date, department, ErrNoMatchingSlice)
	}

	ids := make([]string, 0, len(machines))
	for id := range machines {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	labels := telemetry.HourKeys()
	series := make([]dataset.Series, 0, len(ids))
	for _, id := range ids {
		hours := machines[id]
		values := make([]dataset.Sample, len(labels))
		for i, hour := range labels {
			reading, ok := hours[hour]
			if !ok {
				continue
			}
			if metric == MetricPowerFactor {
				values[i] = dataset.FromPtr(reading.PowerFactor)
			} else {
				values[i] = dataset.FromPtr(reading.Consumption)
			}
		}
		series = append(series, dataset.Series{
			Name:   fmt.Sprintf("%s %s", id, metric.Label()),
			Kind:   dataset.KindLine,
			Values: values,
			Style:  dataset.Style{Color: MachineColor(id)},
		})
	}
	return dataset.Dataset{Labels: labels, Series: series}, nil
}

// DailyChart wraps a daily slice with its axes. Power factor is clamped to [0,1].
func DailyChart(ds dataset.Dataset, metric Metric) dataset.Chart {
	c := dataset.Chart{
		Kind: dataset.ChartLine,
		Data: ds,
		X:    dataset.Axis{Title: "Hours of the Day"},
		Y:    dataset.Axis{Title: "Consumption (kWh)", Min: dataset.Float(0)},
	}
	if metric == MetricPowerFactor {
		c.Y = dataset.Axis{Title: "Power Factor", Min: dataset.Float(0), Max: dataset.Float(1)}
	}
	return c
}

// Days lists the dates in order of appearance.
func Days(days []telemetry.DailyConsumptionDay) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Date
	}
	return out
}

// Departments lists the departments of the first day, sorted.
func Departments(days []telemetry.DailyConsumptionDay) []string {
	if len(days) == 0 {
		return nil
	}
	out := make([]string, 0, len(days[0].Departments))
	for name := range days[0].Departments {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
