package calc

import (
	"errors"
	"reflect"
	"testing"

	"energy-insights/internal/dataset"
	"energy-insights/internal/telemetry"
)

func TestFlagsBoundary(t *testing.T) {
	values := []dataset.Sample{dataset.Num(674.9), dataset.Num(675), dataset.Num(675.01), dataset.Null()}
	got := Flags(values, KWHPerTonneLimit)
	want := []bool{false, false, true, false}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("flags = %v, want %v", got, want)
	}
}

func TestAnnotateStylesAtRenderTime(t *testing.T) {
	s := dataset.Series{
		Name:   "avg",
		Kind:   dataset.KindLine,
		Values: []dataset.Sample{dataset.Num(600), dataset.Num(700)},
		Style:  dataset.Style{Color: NormalColor},
	}
	s, line := Annotate(s, KWHPerTonneLimit)
	if line.Value != 675 || !line.Dashed || line.Label != "Threshold (675)" {
		t.Fatalf("unexpected annotation %+v", line)
	}

	ds := dataset.Dataset{Labels: []string{"d1", "d2"}, Series: []dataset.Series{s}}
	styles := PointStyles(ds, 0)
	if styles[0].Flagged || styles[0].Color != NormalColor {
		t.Fatalf("600 should keep the base colour, got %+v", styles[0])
	}
	if !styles[1].Flagged || styles[1].Color != AlertColor {
		t.Fatalf("700 should be flagged, got %+v", styles[1])
	}

	if !reflect.DeepEqual(styles, PointStyles(ds, 0)) {
		t.Fatal("styling must be deterministic")
	}
}

func TestOverSpec(t *testing.T) {
	cases := []struct {
		name        string
		consumption float64
		molten      float64
		want        bool
	}{
		{"below ceiling", 10000, 10000, false},
		{"at ceiling", 10200, 10000, false},
		{"above ceiling", 10300, 10000, true},
		{"no molten metal", 500, 0, true},
		{"negative molten metal", 500, -1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOverSpec(tc.consumption, tc.molten, SpecificConsumptionCeiling); got != tc.want {
				t.Fatalf("IsOverSpec(%v, %v) = %v, want %v", tc.consumption, tc.molten, got, tc.want)
			}
		})
	}
}

func TestRatioRuleUsesDenominatorSeries(t *testing.T) {
	ds := dataset.Dataset{
		Labels: []string{"d1", "d2", "d3"},
		Series: []dataset.Series{
			{Name: "Molten Metal", Kind: dataset.KindLine, Values: []dataset.Sample{dataset.Num(10000), dataset.Num(10000), dataset.Num(0)}},
			{
				Name:   "Consumption",
				Kind:   dataset.KindBar,
				Values: []dataset.Sample{dataset.Num(9000), dataset.Num(11000), dataset.Num(100)},
				Style:  dataset.Style{Color: NormalColor, Fill: NormalColor},
				Rule:   dataset.Rule{Kind: dataset.RuleRatioAbove, Threshold: 1020, Denominator: 0, Scale: 1000, AlertColor: OverSpecColor},
			},
		},
	}
	got := PointStyles(ds, 1)
	if got[0].Flagged {
		t.Fatal("900 kWh/t must not be flagged")
	}
	if !got[1].Flagged || got[1].Color != OverSpecColor {
		t.Fatalf("1100 kWh/t must be flagged, got %+v", got[1])
	}
	if !got[2].Flagged {
		t.Fatal("zero molten metal is flagged by policy")
	}
}

func TestStyleAtOutOfRange(t *testing.T) {
	if got := StyleAt(dataset.Empty(), 3, 0); got != (PointStyle{}) {
		t.Fatalf("missing series should yield zero style, got %+v", got)
	}
}

func TestZoneCostChart(t *testing.T) {
	rows := []telemetry.TimeZoneBucket{
		{Date: "2024-07-01", ZoneA: 100, ZoneB: 200, ZoneC: 300, ZoneD: 400},
		{Date: "2024-07-02", ZoneA: 1.5, ZoneB: 0, ZoneC: 0, ZoneD: 10},
	}
	got := ZoneCostChart(rows)
	if err := got.Chart.Data.Validate(); err != nil {
		t.Fatalf("zone dataset invalid: %v", err)
	}
	names := make([]string, 0, 4)
	for _, s := range got.Chart.Data.Series {
		names = append(names, s.Name)
		if s.Stack != zoneStack {
			t.Fatalf("series %s must share the stack", s.Name)
		}
	}
	if !reflect.DeepEqual(names, []string{"Zone A", "Zone B", "Zone C", "Zone D"}) {
		t.Fatalf("zone order not stable: %v", names)
	}
	if got.Totals[0].Total.String() != "101.5" {
		t.Fatalf("zone A total = %s", got.Totals[0].Total)
	}
	if got.GrandTotal.String() != "1011.5" {
		t.Fatalf("grand total = %s", got.GrandTotal)
	}
	if !reflect.DeepEqual(got, ZoneCostChart(rows)) {
		t.Fatal("zone chart must be deterministic")
	}
}

func ptr(v float64) *float64 { return &v }

func dailyFixture() []telemetry.DailyConsumptionDay {
	hours := telemetry.MachineHours{}
	for _, h := range telemetry.HourKeys() {
		hours[h] = telemetry.HourReading{Consumption: ptr(10), PowerFactor: ptr(0.9)}
	}
	delete(hours, "5")
	hours["6"] = telemetry.HourReading{Consumption: ptr(12)}

	return []telemetry.DailyConsumptionDay{{
		Date: "2024-07-29",
		Departments: map[string]map[string]telemetry.MachineHours{
			"Melting": {
				"IF2": hours,
				"IF1": {"0": {Consumption: ptr(1)}},
			},
		},
	}}
}

func TestSliceDailyNullsForMissingHours(t *testing.T) {
	ds, err := SliceDaily(dailyFixture(), "2024-07-29", "Melting", MetricPowerFactor)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if len(ds.Labels) != 24 || ds.Labels[0] != "0" || ds.Labels[23] != "23" {
		t.Fatalf("unexpected labels %v", ds.Labels)
	}
	if err := ds.Validate(); err != nil {
		t.Fatalf("slice invalid: %v", err)
	}
	if ds.Series[0].Name != "IF1 Power Factor" || ds.Series[1].Name != "IF2 Power Factor" {
		t.Fatalf("machines must be sorted, got %s, %s", ds.Series[0].Name, ds.Series[1].Name)
	}
	if2 := ds.Series[1].Values
	if if2[5].Valid {
		t.Fatal("missing hour must be null")
	}
	if if2[6].Valid {
		t.Fatal("missing metric must be null")
	}
	if !if2[7].Valid || if2[7].Value != 0.9 {
		t.Fatalf("hour 7 should be 0.9, got %+v", if2[7])
	}
	if ds.Series[0].Values[0].Valid {
		t.Fatal("IF1 reported no power factor at hour 0")
	}
}

func TestSliceDailyAbsentDay(t *testing.T) {
	ds, err := SliceDaily(dailyFixture(), "2024-07-30", "Melting", MetricConsumption)
	if !errors.Is(err, ErrNoMatchingSlice) {
		t.Fatalf("expected ErrNoMatchingSlice, got %v", err)
	}
	if !ds.IsEmpty() || len(ds.Labels) != 0 || len(ds.Series) != 0 {
		t.Fatalf("absent day must yield an empty dataset, got %+v", ds)
	}

	_, err = SliceDaily(dailyFixture(), "2024-07-29", "Casting", MetricConsumption)
	if !errors.Is(err, ErrNoMatchingSlice) {
		t.Fatalf("absent department should not match, got %v", err)
	}
}

func TestDailyChartClampsPowerFactor(t *testing.T) {
	c := DailyChart(dataset.Empty(), MetricPowerFactor)
	if c.Y.Min == nil || c.Y.Max == nil || *c.Y.Min != 0 || *c.Y.Max != 1 {
		t.Fatalf("power factor axis must be [0,1], got %+v", c.Y)
	}
	if DailyChart(dataset.Empty(), MetricConsumption).Y.Max != nil {
		t.Fatal("consumption axis is unbounded")
	}
}

func TestParseMetric(t *testing.T) {
	if m, err := ParseMetric("power_factor"); err != nil || m != MetricPowerFactor {
		t.Fatalf("alias not accepted: %v %v", m, err)
	}
	if _, err := ParseMetric("voltage"); err == nil {
		t.Fatal("unknown metric should fail")
	}
}

func TestFlooredMin(t *testing.T) {
	got := FlooredMin(10, []dataset.Sample{dataset.Num(650), dataset.Null(), dataset.Num(700)})
	if got == nil || *got != 640 {
		t.Fatalf("expected 640, got %v", got)
	}
	got = FlooredMin(10, []dataset.Sample{dataset.Num(4)})
	if got == nil || *got != 0 {
		t.Fatalf("expected floor at 0, got %v", got)
	}
	if FlooredMin(10, []dataset.Sample{dataset.Null()}) != nil {
		t.Fatal("all-null series has no minimum")
	}
}
