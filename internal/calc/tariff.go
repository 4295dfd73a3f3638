package calc

import (
	"github.com/shopspring/decimal"

	"energy-insights/internal/dataset"
	"energy-insights/internal/telemetry"
)

// Zone describes one tariff period bucket.
type Zone struct {
	Name  string
	Color string
}

// Zones lists the tariff zones in A..D order; series order follows it.
var Zones = [4]Zone{
	{Name: "Zone A", Color: "rgba(255, 99, 132, 0.5)"},
	{Name: "Zone B", Color: "rgba(54, 162, 235, 0.5)"},
	{Name: "Zone C", Color: "rgba(255, 206, 86, 0.5)"},
	{Name: "Zone D", Color: "rgba(75, 192, 192, 0.5)"},
}

const zoneStack = "Stack 0"

// ZoneTotal is the summed cost of one zone over every reported day.
type ZoneTotal struct {
	Zone  string          `json:"zone"`
	Total decimal.Decimal `json:"total"`
}

// ZoneCost is the stacked-bar chart plus per-zone totals.
type ZoneCost struct {
	Chart      dataset.Chart   `json:"chart"`
	Totals     []ZoneTotal     `json:"totals"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// ZoneCostChart stacks the four zone costs per day on a shared date axis.
func ZoneCostChart(rows []telemetry.TimeZoneBucket) ZoneCost {
	labels := make([]string, len(rows))
	series := make([]dataset.Series, len(Zones))
	totals := make([]decimal.Decimal, len(Zones))
	for z, zone := range Zones {
		series[z] = dataset.Series{
			Name:   zone.Name,
			Kind:   dataset.KindBar,
			Values: make([]dataset.Sample, len(rows)),
			Style:  dataset.Style{Color: zone.Color, Fill: zone.Color},
			Stack:  zoneStack,
		}
	}

	for i, row := range rows {
		labels[i] = row.Date
		for z, cost := range row.Zones() {
			series[z].Values[i] = dataset.Num(cost)
			totals[z] = totals[z].Add(decimal.NewFromFloat(cost))
		}
	}

	out := ZoneCost{
		Chart: dataset.Chart{
			Kind: dataset.ChartStackedBar,
			Data: dataset.Dataset{Labels: labels, Series: series},
			X:    dataset.Axis{Title: "Date", Stacked: true},
			Y:    dataset.Axis{Title: "Cost (₹)", Stacked: true, Min: dataset.Float(0), Format: dataset.TickThousands},
		},
		Totals:     make([]ZoneTotal, len(Zones)),
		GrandTotal: decimal.Zero,
	}
	for z, zone := range Zones {
		out.Totals[z] = ZoneTotal{Zone: zone.Name, Total: totals[z]}
		out.GrandTotal = out.GrandTotal.Add(totals[z])
	}
	return out
}
