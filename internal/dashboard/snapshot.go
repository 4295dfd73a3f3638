package dashboard

import (
	"energy-insights/internal/calc"
	"energy-insights/internal/dataset"
)

// View is what a panel displays for one slot. Data is the last successful
// value, or the empty placeholder when Loaded is false.
type View[T any] struct {
	Status Status `json:"status" yaml:"status"`
	Data   T      `json:"data" yaml:"data"`
	Loaded bool   `json:"loaded" yaml:"loaded"`
}

// Daily is the daily slice for the current selection.
type Daily struct {
	Chart       dataset.Chart `json:"chart" yaml:"chart"`
	Days        []string      `json:"days" yaml:"days"`
	Departments []string      `json:"departments" yaml:"departments"`
	// Err is set when the selected day or department is absent.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Snapshot is an immutable copy of the session taken for one render.
type Snapshot struct {
	Selection      Selection            `json:"selection" yaml:"selection"`
	DepartmentCost View[DepartmentCost] `json:"departmentCost" yaml:"departmentCost"`
	AverageKWH     View[dataset.Chart]  `json:"averageKWH" yaml:"averageKWH"`
	KWHParts       View[KWHParts]       `json:"kwhParts" yaml:"kwhParts"`
	MoltenMetal    View[dataset.Chart]  `json:"moltenMetal" yaml:"moltenMetal"`
	TimeZones      View[calc.ZoneCost]  `json:"timeZones" yaml:"timeZones"`
	Daily          View[Daily]          `json:"daily" yaml:"daily"`
}

func viewOf[T any](slot *Slot[T], clone func(T) T) View[T] {
	data, ok := slot.Retained()
	return View[T]{Status: slot.State().Status, Data: clone(data), Loaded: ok}
}

// Snapshot copies every slot so callers can render without holding locks.
func (s *Session) Snapshot() Snapshot {
	sel := s.Selection()

	out := Snapshot{
		Selection: sel,
		DepartmentCost: viewOf(s.departments, func(d DepartmentCost) DepartmentCost {
			d.Chart = d.Chart.Clone()
			d.Costs = append(d.Costs[:0:0], d.Costs...)
			return d
		}),
		AverageKWH: viewOf(s.avgKWH, dataset.Chart.Clone),
		KWHParts: viewOf(s.kwhParts, func(k KWHParts) KWHParts {
			k.Chart = k.Chart.Clone()
			k.Machines = append([]string(nil), k.Machines...)
			return k
		}),
		MoltenMetal: viewOf(s.molten, dataset.Chart.Clone),
		TimeZones: viewOf(s.zones, func(z calc.ZoneCost) calc.ZoneCost {
			z.Chart = z.Chart.Clone()
			z.Totals = append(z.Totals[:0:0], z.Totals...)
			return z
		}),
	}

	days, loaded := s.daily.Retained()
	daily := Daily{Days: calc.Days(days), Departments: calc.Departments(days)}
	ds, err := calc.SliceDaily(days, sel.Day, sel.Department, sel.Metric)
	if err != nil && loaded {
		daily.Err = err.Error()
	}
	daily.Chart = calc.DailyChart(ds, sel.Metric)
	out.Daily = View[Daily]{Status: s.daily.State().Status, Data: daily, Loaded: loaded}
	return out
}
