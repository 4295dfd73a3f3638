package view

import (
	"strings"

	"energy-insights/internal/dashboard"
	"energy-insights/internal/dataset"
	"energy-insights/internal/query"
)

// PanelID names a dashboard panel in URLs and file names.
type PanelID string

const (
	PanelDepartmentCost   PanelID = "department-cost"
	PanelAverageKWH       PanelID = "avg-kwh"
	PanelKWHParts         PanelID = "kwh-parts"
	PanelMoltenMetal      PanelID = "molten-metal"
	PanelTimeZone         PanelID = "time-zone"
	PanelDailyConsumption PanelID = "daily-consumption"
)

// Headings maps each panel to its fixed heading, in layout order.
var Headings = []struct {
	ID      PanelID
	Heading string
}{
	{PanelDepartmentCost, "Cost of Energy by Department"},
	{PanelAverageKWH, "Average KWH/Tonne Trend"},
	{PanelKWHParts, "Average KWH/Part"},
	{PanelMoltenMetal, "Consumption and Molten Metal Trend"},
	{PanelTimeZone, "Cost (₹) wrt MSEB Time Zone"},
	{PanelDailyConsumption, "Daily Consumption Trend"},
}

// Stat is a labelled figure shown beside a chart.
type Stat struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Panel is one visible card of the dashboard.
type Panel struct {
	ID      PanelID          `json:"id" yaml:"id"`
	Heading string           `json:"heading" yaml:"heading"`
	Status  dashboard.Status `json:"status" yaml:"status"`
	Loaded  bool             `json:"loaded" yaml:"loaded"`
	Chart   dataset.Chart    `json:"chart" yaml:"chart"`
	Stats   []Stat           `json:"stats,omitempty" yaml:"stats,omitempty"`
	Options []string         `json:"options,omitempty" yaml:"options,omitempty"`
	Notice  string           `json:"notice,omitempty" yaml:"notice,omitempty"`
}

// Layout is the composed page: the filtered panels and, independently, the
// current query result.
type Layout struct {
	Filter    string              `json:"filter" yaml:"filter"`
	Selection dashboard.Selection `json:"selection" yaml:"selection"`
	Panels    []Panel             `json:"panels" yaml:"panels"`
	Query     *query.Result       `json:"query,omitempty" yaml:"query,omitempty"`
}

// Matches reports whether heading contains filter, ignoring case. An empty
// filter matches everything.
func Matches(heading, filter string) bool {
	return strings.Contains(strings.ToLower(heading), strings.ToLower(filter))
}

// Compose builds the panels of snap whose heading matches filter.
func Compose(snap dashboard.Snapshot, filter string) Layout {
	out := Layout{Filter: filter, Selection: snap.Selection, Panels: []Panel{}}
	for _, h := range Headings {
		if !Matches(h.Heading, filter) {
			continue
		}
		p := build(snap, h.ID)
		p.ID, p.Heading = h.ID, h.Heading
		p.Chart.Title = h.Heading
		out.Panels = append(out.Panels, p)
	}
	return out
}

// Find returns the panel with id, if it is visible in the layout.
func (l Layout) Find(id PanelID) (Panel, bool) {
	for _, p := range l.Panels {
		if p.ID == id {
			return p, true
		}
	}
	return Panel{}, false
}

// WithQuery attaches a settled query result.
func (l Layout) WithQuery(res query.Result, ok bool) Layout {
	if ok {
		l.Query = &res
	}
	return l
}

func build(snap dashboard.Snapshot, id PanelID) Panel {
	switch id {
	case PanelDepartmentCost:
		v := snap.DepartmentCost
		stats := []Stat{{Label: "Total", Value: FormatCurrencyDecimal(v.Data.Total)}}
		for i, name := range v.Data.Chart.Data.Labels {
			stats = append(stats, Stat{Label: name, Value: FormatPercent(v.Data.Share(i))})
		}
		return Panel{Status: v.Status, Loaded: v.Loaded, Chart: v.Data.Chart, Stats: stats}

	case PanelAverageKWH:
		v := snap.AverageKWH
		return Panel{
			Status:  v.Status,
			Loaded:  v.Loaded,
			Chart:   v.Data,
			Options: []string{"combined", "IF1", "IF2"},
			Stats:   []Stat{{Label: "Mode", Value: string(snap.Selection.AvgMode)}},
		}

	case PanelKWHParts:
		v := snap.KWHParts
		machine := v.Data.Machine
		if machine == "" {
			machine = "all"
		}
		return Panel{
			Status:  v.Status,
			Loaded:  v.Loaded,
			Chart:   v.Data.Chart,
			Options: v.Data.Machines,
			Stats:   []Stat{{Label: "Machine", Value: machine}},
		}

	case PanelMoltenMetal:
		v := snap.MoltenMetal
		return Panel{Status: v.Status, Loaded: v.Loaded, Chart: v.Data}

	case PanelTimeZone:
		v := snap.TimeZones
		stats := make([]Stat, 0, len(v.Data.Totals)+1)
		for _, t := range v.Data.Totals {
			stats = append(stats, Stat{Label: t.Zone, Value: FormatCurrencyDecimal(t.Total)})
		}
		stats = append(stats, Stat{Label: "Total", Value: FormatCurrencyDecimal(v.Data.GrandTotal)})
		return Panel{Status: v.Status, Loaded: v.Loaded, Chart: v.Data.Chart, Stats: stats}

	case PanelDailyConsumption:
		v := snap.Daily
		return Panel{
			Status:  v.Status,
			Loaded:  v.Loaded,
			Chart:   v.Data.Chart,
			Options: v.Data.Days,
			Stats: []Stat{
				{Label: "Day", Value: snap.Selection.Day},
				{Label: "Department", Value: snap.Selection.Department},
				{Label: "Metric", Value: snap.Selection.Metric.Label()},
				{Label: "Departments", Value: strings.Join(v.Data.Departments, ", ")},
			},
			Notice: v.Data.Err,
		}
	}
	return Panel{}
}
