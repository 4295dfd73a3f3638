package cli

import (
	"testing"

	"energy-insights/internal/calc"
	"energy-insights/internal/dashboard"
)

func TestSelectionFlags(t *testing.T) {
	f := selectionFlags{mode: "IF1", metric: "pf", day: "2024-07-30"}
	sel, err := f.selection()
	if err != nil {
		t.Fatalf("selection: %v", err)
	}
	if sel.AvgMode != dashboard.ModeIF1 || sel.Metric != calc.MetricPowerFactor || sel.Day != "2024-07-30" {
		t.Fatalf("unexpected selection %+v", sel)
	}

	empty, err := (&selectionFlags{}).selection()
	if err != nil || empty != (dashboard.Selection{}) {
		t.Fatalf("unset flags should leave the selection empty, got %+v %v", empty, err)
	}

	if _, err := (&selectionFlags{mode: "IF7"}).selection(); err == nil {
		t.Fatal("unknown mode should be rejected")
	}
}
