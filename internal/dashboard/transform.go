package dashboard

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"energy-insights/internal/calc"
	"energy-insights/internal/dataset"
	"energy-insights/internal/telemetry"
)

var departmentPalette = []string{"#FF6B6B", "#FFD93D", "#95D03A", "#2ECC71", "#0A2647"}

const normalFill = "rgba(33, 150, 243, 0.1)"

var hundred = decimal.NewFromInt(100)

// DepartmentCost is the department split with its running total.
type DepartmentCost struct {
	Chart dataset.Chart     `json:"chart"`
	Costs []decimal.Decimal `json:"costs"`
	Total decimal.Decimal   `json:"total"`
}

// Share returns slice i as a percentage of the total, rounded to 2 places.
func (d DepartmentCost) Share(i int) decimal.Decimal {
	if i < 0 || i >= len(d.Costs) || d.Total.IsZero() {
		return decimal.Zero
	}
	return d.Costs[i].Div(d.Total).Mul(hundred).Round(2)
}

// DepartmentCostChart builds the department pie and sums the costs.
func DepartmentCostChart(rows []telemetry.DepartmentCost) DepartmentCost {
	labels := make([]string, len(rows))
	values := make([]dataset.Sample, len(rows))
	costs := make([]decimal.Decimal, len(rows))
	total := decimal.Zero
	for i, row := range rows {
		labels[i] = row.ID
		values[i] = dataset.Num(row.TotalCost)
		costs[i] = decimal.NewFromFloat(row.TotalCost)
		total = total.Add(costs[i])
	}

	return DepartmentCost{
		Chart: dataset.Chart{
			Kind: dataset.ChartPie,
			Data: dataset.Dataset{
				Labels: labels,
				Series: []dataset.Series{{Name: "Cost", Kind: dataset.KindBar, Values: values}},
			},
			Y:       dataset.Axis{Format: dataset.TickCurrency},
			Palette: departmentPalette,
		},
		Costs: costs,
		Total: total,
	}
}

// AvgMode selects which furnace average the KWH/tonne trend shows.
type AvgMode string

const (
	ModeCombined AvgMode = "combined"
	ModeIF1      AvgMode = "IF1"
	ModeIF2      AvgMode = "IF2"
)

// ParseAvgMode validates a mode name. Empty means combined.
func ParseAvgMode(s string) (AvgMode, error) {
	switch AvgMode(s) {
	case "", ModeCombined:
		return ModeCombined, nil
	case ModeIF1, ModeIF2:
		return AvgMode(s), nil
	default:
		return "", fmt.Errorf("unknown average mode %q (valid: combined, IF1, IF2)", s)
	}
}

func (m AvgMode) seriesName() string {
	switch m {
	case ModeIF1:
		return "Average KWH - IF1"
	case ModeIF2:
		return "Average KWH - IF2"
	default:
		return "Combined Average KWH"
	}
}

// AverageKWHChart projects the rows for mode and annotates them against threshold.
// The Y minimum is max(0, min - 10) of the projected values.
func AverageKWHChart(rows []telemetry.AvgKWHRow, mode AvgMode, threshold float64) dataset.Chart {
	labels := make([]string, len(rows))
	values := make([]dataset.Sample, len(rows))
	for i, row := range rows {
		labels[i] = row.Date
		switch mode {
		case ModeIF1:
			values[i] = dataset.Num(row.AvgIF1)
		case ModeIF2:
			values[i] = dataset.Num(row.AvgIF2)
		default:
			values[i] = dataset.Num((row.AvgIF1 + row.AvgIF2) / 2)
		}
	}

	series, line := calc.Annotate(dataset.Series{
		Name:   mode.seriesName(),
		Kind:   dataset.KindLine,
		Values: values,
		Style:  dataset.Style{Color: calc.NormalColor, Fill: normalFill, Width: 2},
	}, threshold)

	return dataset.Chart{
		Kind:        dataset.ChartLine,
		Data:        dataset.Dataset{Labels: labels, Series: []dataset.Series{series}},
		X:           dataset.Axis{Title: "Date"},
		Y:           dataset.Axis{Title: "KWH/Tonne", Min: calc.FlooredMin(10, values)},
		Annotations: []dataset.Annotation{line},
	}
}

// KWHParts is the KWH/part trend plus the machines a filter may select,
// taken from the keys of the first row.
type KWHParts struct {
	Chart    dataset.Chart `json:"chart"`
	Machines []string      `json:"machines"`
	Machine  string        `json:"machine,omitempty"`
}

// KWHPartsChart projects machine (absent value as 0) or, with no machine,
// the mean of the present values per row. The Y minimum comes from every
// machine in the unfiltered rows so it does not move with the filter.
func KWHPartsChart(rows []telemetry.KWHPartsRow, machine string) KWHParts {
	labels := make([]string, len(rows))
	values := make([]dataset.Sample, len(rows))
	all := make([]dataset.Sample, 0, len(rows)*2)

	for i, row := range rows {
		labels[i] = row.ID

		var sum float64
		var n int
		for _, v := range row.MachineData {
			if v == nil {
				continue
			}
			all = append(all, dataset.Num(*v))
			sum += *v
			n++
		}

		switch {
		case machine != "":
			if v := row.MachineData[machine]; v != nil {
				values[i] = dataset.Num(*v)
			} else {
				values[i] = dataset.Num(0)
			}
		case n > 0:
			values[i] = dataset.Num(sum / float64(n))
		default:
			values[i] = dataset.Num(0)
		}
	}

	var machines []string
	if len(rows) > 0 {
		machines = make([]string, 0, len(rows[0].MachineData))
		for id := range rows[0].MachineData {
			machines = append(machines, id)
		}
		sort.Strings(machines)
	}

	return KWHParts{
		Chart: dataset.Chart{
			Kind: dataset.ChartLine,
			Data: dataset.Dataset{
				Labels: labels,
				Series: []dataset.Series{{
					Name:   "KWH/Part",
					Kind:   dataset.KindLine,
					Values: values,
					Style:  dataset.Style{Color: calc.NormalColor, Fill: normalFill, Width: 2},
				}},
			},
			X: dataset.Axis{Title: "Date"},
			Y: dataset.Axis{Title: "KWH/Part", Min: calc.FlooredMin(0, all)},
		},
		Machines: machines,
		Machine:  machine,
	}
}

// HasMachine reports whether id is one of the selectable machines.
func (k KWHParts) HasMachine(id string) bool {
	i := sort.SearchStrings(k.Machines, id)
	return i < len(k.Machines) && k.Machines[i] == id
}

// MoltenMetalChart pairs a molten metal line with consumption bars; a bar is
// flagged when consumption per tonne exceeds ceiling.
func MoltenMetalChart(rows []telemetry.MoltenMetalRow, ceiling float64) dataset.Chart {
	labels := make([]string, len(rows))
	molten := make([]dataset.Sample, len(rows))
	consumption := make([]dataset.Sample, len(rows))
	for i, row := range rows {
		labels[i] = row.Date
		molten[i] = dataset.Num(row.MoltenMetal)
		consumption[i] = dataset.Num(row.Consumption)
	}

	return dataset.Chart{
		Kind: dataset.ChartCombo,
		Data: dataset.Dataset{
			Labels: labels,
			Series: []dataset.Series{
				{
					Name:   "Molten Metal",
					Kind:   dataset.KindLine,
					Values: molten,
					Style:  dataset.Style{Color: "#FFD700", Width: 3},
				},
				{
					Name:   "Consumption",
					Kind:   dataset.KindBar,
					Values: consumption,
					Style:  dataset.Style{Color: calc.NormalColor, Fill: calc.NormalColor, Width: 2},
					Rule: dataset.Rule{
						Kind:        dataset.RuleRatioAbove,
						Threshold:   ceiling,
						Denominator: 0,
						Scale:       1000,
						AlertColor:  calc.OverSpecColor,
					},
				},
			},
		},
		X: dataset.Axis{Title: "Date"},
		Y: dataset.Axis{Title: "Consumption (kWh/Tonne)", Min: calc.FlooredMin(0, consumption, molten)},
	}
}
