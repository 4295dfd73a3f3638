package dashboard

import (
	"testing"

	"energy-insights/internal/calc"
	"energy-insights/internal/telemetry"
)

func TestAverageKWHMinimumTracksMode(t *testing.T) {
	rows := []telemetry.AvgKWHRow{
		{Date: "d1", AvgIF1: 5, AvgIF2: 700},
		{Date: "d2", AvgIF1: 650, AvgIF2: 720},
	}

	cases := []struct {
		mode    AvgMode
		wantMin float64
		flagged []bool
	}{
		{ModeIF1, 0, []bool{false, false}},
		{ModeIF2, 690, []bool{true, true}},
		{ModeCombined, 342.5, []bool{false, true}},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			c := AverageKWHChart(rows, tc.mode, calc.KWHPerTonneLimit)
			if c.Y.Min == nil || *c.Y.Min != tc.wantMin {
				t.Fatalf("y min = %v, want %v", c.Y.Min, tc.wantMin)
			}
			for i, want := range tc.flagged {
				if got := calc.StyleAt(c.Data, 0, i).Flagged; got != want {
					t.Fatalf("point %d flagged = %v, want %v", i, got, want)
				}
			}
			if len(c.Annotations) != 1 || c.Annotations[0].Label != "Threshold (675)" {
				t.Fatalf("threshold annotation missing: %+v", c.Annotations)
			}
		})
	}
}

func TestParseAvgMode(t *testing.T) {
	if m, err := ParseAvgMode(""); err != nil || m != ModeCombined {
		t.Fatalf("empty mode should be combined, got %q %v", m, err)
	}
	if _, err := ParseAvgMode("IF3"); err == nil {
		t.Fatal("IF3 should be rejected")
	}
}

func TestKWHPartsProjection(t *testing.T) {
	rows := []telemetry.KWHPartsRow{
		{ID: "d1", MachineData: map[string]*float64{"IF2": ptr(3), "IF1": ptr(5)}},
		{ID: "d2", MachineData: map[string]*float64{"IF1": nil, "IF2": nil}},
		{ID: "d3", MachineData: map[string]*float64{"IF2": ptr(9)}},
	}

	all := KWHPartsChart(rows, "")
	want := []float64{4, 0, 9}
	for i, w := range want {
		if got := all.Chart.Data.Series[0].Values[i]; !got.Valid || got.Value != w {
			t.Fatalf("mean[%d] = %+v, want %v", i, got, w)
		}
	}
	if len(all.Machines) != 2 || all.Machines[0] != "IF1" || all.Machines[1] != "IF2" {
		t.Fatalf("machines should be sorted keys of the first row, got %v", all.Machines)
	}

	one := KWHPartsChart(rows, "IF1")
	if got := one.Chart.Data.Series[0].Values[2].Value; got != 0 {
		t.Fatalf("absent machine value should be 0, got %v", got)
	}
	if *one.Chart.Y.Min != 3 || *all.Chart.Y.Min != 3 {
		t.Fatal("y min must come from the unfiltered data")
	}
}

func TestMoltenMetalFlagsOverSpecBars(t *testing.T) {
	rows := []telemetry.MoltenMetalRow{
		{Date: "d1", MoltenMetal: 2000, Consumption: 2000},
		{Date: "d2", MoltenMetal: 1000, Consumption: 1100},
		{Date: "d3", MoltenMetal: 0, Consumption: 50},
	}
	c := MoltenMetalChart(rows, calc.SpecificConsumptionCeiling)
	if err := c.Data.Validate(); err != nil {
		t.Fatalf("invalid dataset: %v", err)
	}

	want := []bool{false, true, true}
	for i, w := range want {
		st := calc.StyleAt(c.Data, 1, i)
		if st.Flagged != w {
			t.Fatalf("bar %d flagged = %v, want %v", i, st.Flagged, w)
		}
	}
	if *c.Y.Min != 0 {
		t.Fatalf("y min should floor at 0, got %v", *c.Y.Min)
	}
	if c.Data.Series[0].Name != "Molten Metal" || c.Data.Series[1].Name != "Consumption" {
		t.Fatal("series names changed")
	}
}

func TestDepartmentShareWithZeroTotal(t *testing.T) {
	d := DepartmentCostChart([]telemetry.DepartmentCost{{ID: "Melting", TotalCost: 0}})
	if !d.Share(0).IsZero() || !d.Share(5).IsZero() {
		t.Fatal("shares of a zero total should be zero")
	}
	if len(d.Chart.Palette) == 0 {
		t.Fatal("pie needs a palette")
	}
}
