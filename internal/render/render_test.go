package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"energy-insights/internal/calc"
	"energy-insights/internal/dashboard"
	"energy-insights/internal/dataset"
	"energy-insights/internal/telemetry"
)

func newTestRenderer() *Renderer {
	return New(Options{Width: 640, Height: 360}, zerolog.Nop())
}

func TestRenderAnnotatedLineWithGaps(t *testing.T) {
	c := dashboard.AverageKWHChart([]telemetry.AvgKWHRow{
		{Date: "d1", AvgIF1: 600, AvgIF2: 700},
		{Date: "d2", AvgIF1: 800, AvgIF2: 700},
		{Date: "d3", AvgIF1: 500, AvgIF2: 700},
	}, dashboard.ModeCombined, calc.KWHPerTonneLimit)
	c.Data.Series[0].Values[1] = dataset.Null()

	for _, f := range []Format{FormatPNG, FormatSVG} {
		var buf bytes.Buffer
		if err := newTestRenderer().Render(&buf, c, f); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		if buf.Len() == 0 {
			t.Fatalf("%s: empty output", f)
		}
	}
}

func TestRenderSVGContainsSVG(t *testing.T) {
	c := dashboard.MoltenMetalChart([]telemetry.MoltenMetalRow{
		{Date: "d1", MoltenMetal: 2000, Consumption: 2100},
		{Date: "d2", MoltenMetal: 0, Consumption: 90},
	}, calc.SpecificConsumptionCeiling)

	var buf bytes.Buffer
	if err := newTestRenderer().Render(&buf, c, FormatSVG); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Fatal("svg output expected")
	}
}

func TestRenderStackedAndPie(t *testing.T) {
	zones := calc.ZoneCostChart([]telemetry.TimeZoneBucket{
		{Date: "d1", ZoneA: 100, ZoneB: 200, ZoneC: 50, ZoneD: 10},
		{Date: "d2", ZoneA: 120, ZoneB: 0, ZoneC: 60, ZoneD: 20},
	})
	pie := dashboard.DepartmentCostChart([]telemetry.DepartmentCost{
		{ID: "Melting", TotalCost: 700},
		{ID: "Moulding", TotalCost: 300},
	})

	r := newTestRenderer()
	for name, c := range map[string]dataset.Chart{"zones": zones.Chart, "pie": pie.Chart} {
		var buf bytes.Buffer
		if err := r.Render(&buf, c, FormatPNG); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
			t.Fatalf("%s: not a png", name)
		}
	}
}

func TestRenderEmptyChart(t *testing.T) {
	r := newTestRenderer()
	charts := []dataset.Chart{
		calc.DailyChart(dataset.Empty(), calc.MetricConsumption),
		calc.ZoneCostChart(nil).Chart,
		dashboard.DepartmentCostChart(nil).Chart,
	}
	for _, c := range charts {
		var buf bytes.Buffer
		if err := r.Render(&buf, c, FormatPNG); !errors.Is(err, ErrNothingToRender) {
			t.Fatalf("expected ErrNothingToRender for %s, got %v", c.Kind, err)
		}
		if buf.Len() != 0 {
			t.Fatal("failed render must not write")
		}
	}
}

func TestRenderRejectsInvalidDataset(t *testing.T) {
	c := dataset.Chart{Data: dataset.Dataset{
		Labels: []string{"a", "b"},
		Series: []dataset.Series{{Name: "x", Values: []dataset.Sample{dataset.Num(1)}}},
	}}
	if err := newTestRenderer().Render(&bytes.Buffer{}, c, FormatPNG); err == nil {
		t.Fatal("length mismatch should be rejected")
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string][4]uint8{
		"#FF5252":                 {0xFF, 0x52, 0x52, 0xFF},
		"#fff":                    {0xFF, 0xFF, 0xFF, 0xFF},
		"rgba(255, 99, 132, 0.5)": {255, 99, 132, 128},
		"rgb(54,162,235)":         {54, 162, 235, 255},
	}
	for in, want := range cases {
		c, err := parseColor(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got := [4]uint8{c.R, c.G, c.B, c.A}; got != want {
			t.Fatalf("%s: got %v want %v", in, got, want)
		}
	}
	if _, err := parseColor("blue"); err == nil {
		t.Fatal("named colours are not supported")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatPNG {
		t.Fatalf("default should be png, got %q %v", f, err)
	}
	if f, _ := ParseFormat("SVG"); f.ContentType() != "image/svg+xml" {
		t.Fatal("svg content type")
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatal("gif should be rejected")
	}
}
