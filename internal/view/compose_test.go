package view

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"energy-insights/internal/dashboard"
	"energy-insights/internal/query"
	"energy-insights/internal/telemetry"
)

type emptySource struct{}

func (emptySource) DepartmentCosts(context.Context) ([]telemetry.DepartmentCost, error) {
	return []telemetry.DepartmentCost{{ID: "Melting", TotalCost: 12345}}, nil
}
func (emptySource) AverageKWH(context.Context) ([]telemetry.AvgKWHRow, error) { return nil, nil }
func (emptySource) KWHParts(context.Context) ([]telemetry.KWHPartsRow, error) { return nil, nil }
func (emptySource) ConsumptionMoltenMetal(context.Context) ([]telemetry.MoltenMetalRow, error) {
	return nil, nil
}
func (emptySource) TimeZoneCosts(context.Context) ([]telemetry.TimeZoneBucket, error) {
	return nil, nil
}
func (emptySource) DailyConsumption(context.Context) ([]telemetry.DailyConsumptionDay, error) {
	return nil, nil
}

func snapshot(t *testing.T) dashboard.Snapshot {
	t.Helper()
	s := dashboard.NewSession(emptySource{}, dashboard.Options{}, zerolog.Nop())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s.Snapshot()
}

func TestFilterMSEB(t *testing.T) {
	layout := Compose(snapshot(t), "mseb")
	if len(layout.Panels) != 1 || layout.Panels[0].Heading != "Cost (₹) wrt MSEB Time Zone" {
		t.Fatalf("expected only the MSEB panel, got %+v", layout.Panels)
	}
}

func TestFilterIsCaseInsensitiveSubstring(t *testing.T) {
	snap := snapshot(t)
	cases := []struct {
		filter string
		want   int
	}{
		{"", 6},
		{"TREND", 3},
		{"kwh", 2},
		{"cost", 2},
		{"nothing like this", 0},
	}
	for _, tc := range cases {
		if got := len(Compose(snap, tc.filter).Panels); got != tc.want {
			t.Fatalf("filter %q: %d panels, want %d", tc.filter, got, tc.want)
		}
	}
}

func TestFilterDoesNotTouchQuery(t *testing.T) {
	res := query.Result{Query: "x", State: query.StateResolved}
	layout := Compose(snapshot(t), "nothing").WithQuery(res, true)
	if layout.Query == nil || layout.Query.Query != "x" {
		t.Fatal("query result should survive any filter")
	}
}

func TestDepartmentPanelStats(t *testing.T) {
	layout := Compose(snapshot(t), "department")
	p, ok := layout.Find(PanelDepartmentCost)
	if !ok {
		t.Fatal("department panel missing")
	}
	if p.Stats[0].Value != "₹ 12,345" {
		t.Fatalf("total = %q", p.Stats[0].Value)
	}
	if p.Stats[1].Label != "Melting" || p.Stats[1].Value != "100.00%" {
		t.Fatalf("share = %+v", p.Stats[1])
	}
	if p.Chart.Title != "Cost of Energy by Department" {
		t.Fatalf("chart title = %q", p.Chart.Title)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatThousands(12400); got != "12K" {
		t.Fatalf("thousands = %q", got)
	}
	if got := FormatThousands(3000); got != "3K" {
		t.Fatalf("thousands = %q", got)
	}
	if got := FormatPercent(decimal.RequireFromString("33.3333")); got != "33.33%" {
		t.Fatalf("percent = %q", got)
	}
	if got := FormatCurrency(999.6); got != "₹ 1,000" {
		t.Fatalf("currency = %q", got)
	}
	for v, want := range map[float64]string{
		1234567:    "₹ 12,34,567",
		100000:     "₹ 1,00,000",
		98765432.4: "₹ 9,87,65,432",
	} {
		if got := FormatCurrency(v); got != want {
			t.Fatalf("FormatCurrency(%v) = %q, want %q", v, got, want)
		}
	}
	if got := FormatCurrencyDecimal(decimal.RequireFromString("1234567.49")); got != "₹ 12,34,567" {
		t.Fatalf("decimal currency = %q", got)
	}
}
