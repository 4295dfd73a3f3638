package query

import (
	"bytes"
	"encoding/json"
	"strings"

	"energy-insights/internal/dataset"
)

// DisplayType tags which payload a DisplayConfig carries.
type DisplayType string

const (
	DisplayChart DisplayType = "chart"
	DisplayCards DisplayType = "cards"
)

// Trend is the direction arrow shown on a metric card.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// MetricCard is one summary tile.
type MetricCard struct {
	Title       string `json:"title" yaml:"title"`
	Value       string `json:"value" yaml:"value"`
	Unit        string `json:"unit" yaml:"unit"`
	Description string `json:"description" yaml:"description"`
	Trend       Trend  `json:"trend" yaml:"trend"`
}

// UnmarshalJSON accepts a numeric or string value and maps unknown trends to neutral.
func (c *MetricCard) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title       string          `json:"title"`
		Value       json.RawMessage `json:"value"`
		Unit        string          `json:"unit"`
		Description string          `json:"description"`
		Trend       string          `json:"trend"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	value := ""
	switch v := bytes.TrimSpace(raw.Value); {
	case len(v) == 0 || bytes.Equal(v, []byte("null")):
	case v[0] == '"':
		if err := json.Unmarshal(v, &value); err != nil {
			return err
		}
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return err
		}
		value = n.String()
	}

	*c = MetricCard{
		Title:       raw.Title,
		Value:       value,
		Unit:        raw.Unit,
		Description: raw.Description,
		Trend:       normalizeTrend(raw.Trend),
	}
	return nil
}

func normalizeTrend(s string) Trend {
	switch Trend(strings.ToLower(strings.TrimSpace(s))) {
	case TrendUp:
		return TrendUp
	case TrendDown:
		return TrendDown
	default:
		return TrendNeutral
	}
}

// ChartDataset is one series of a generated chart.
type ChartDataset struct {
	Label           string           `json:"label" yaml:"label"`
	Data            []dataset.Sample `json:"data" yaml:"data"`
	Type            string           `json:"type,omitempty" yaml:"type,omitempty"`
	BackgroundColor string           `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	BorderColor     string           `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
}

// UnmarshalJSON tolerates colour arrays by keeping the first entry.
func (d *ChartDataset) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label           string           `json:"label"`
		Data            []dataset.Sample `json:"data"`
		Type            string           `json:"type"`
		BackgroundColor json.RawMessage  `json:"backgroundColor"`
		BorderColor     json.RawMessage  `json:"borderColor"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = ChartDataset{
		Label:           raw.Label,
		Data:            raw.Data,
		Type:            raw.Type,
		BackgroundColor: firstColor(raw.BackgroundColor),
		BorderColor:     firstColor(raw.BorderColor),
	}
	return nil
}

func firstColor(raw json.RawMessage) string {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return one
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return ""
}

// ChartConfig is a generated chart. Labels and datasets may also arrive
// nested under "data" as chart libraries usually emit them.
type ChartConfig struct {
	Type     string         `json:"type,omitempty" yaml:"type,omitempty"`
	Title    string         `json:"title,omitempty" yaml:"title,omitempty"`
	Labels   []string       `json:"labels" yaml:"labels"`
	Datasets []ChartDataset `json:"datasets" yaml:"datasets"`
	Options  map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// UnmarshalJSON lifts data.labels and data.datasets when the flat fields are absent.
func (c *ChartConfig) UnmarshalJSON(data []byte) error {
	type plain ChartConfig
	var raw struct {
		plain
		Data *struct {
			Labels   []string       `json:"labels"`
			Datasets []ChartDataset `json:"datasets"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := ChartConfig(raw.plain)
	if raw.Data != nil {
		if out.Labels == nil {
			out.Labels = raw.Data.Labels
		}
		if out.Datasets == nil {
			out.Datasets = raw.Data.Datasets
		}
	}
	*c = out
	return nil
}

// Chart converts the generated config into a renderable chart. Series
// shorter or longer than the labels are padded with nulls or cut.
func (c ChartConfig) Chart() dataset.Chart {
	kind := dataset.ChartLine
	switch strings.ToLower(c.Type) {
	case "bar":
		kind = dataset.ChartCombo
	case "pie", "doughnut":
		kind = dataset.ChartPie
	}

	labels := append([]string{}, c.Labels...)
	series := make([]dataset.Series, 0, len(c.Datasets))
	for _, d := range c.Datasets {
		values := make([]dataset.Sample, len(labels))
		copy(values, d.Data)

		sk := dataset.KindLine
		if t := strings.ToLower(d.Type); t == "bar" || (t == "" && strings.EqualFold(c.Type, "bar")) {
			sk = dataset.KindBar
		}
		color := d.BorderColor
		if color == "" || sk == dataset.KindBar {
			if d.BackgroundColor != "" {
				color = d.BackgroundColor
			}
		}
		series = append(series, dataset.Series{
			Name:   d.Label,
			Kind:   sk,
			Values: values,
			Style:  dataset.Style{Color: color, Fill: d.BackgroundColor, Width: 2},
		})
	}
	return dataset.Chart{
		Kind:  kind,
		Title: c.Title,
		Data:  dataset.Dataset{Labels: labels, Series: series},
	}
}

// DisplayConfig is the outcome of a query: a chart or a set of cards, never both.
type DisplayConfig struct {
	DisplayType DisplayType  `json:"displayType" yaml:"displayType"`
	ChartConfig *ChartConfig `json:"chartConfig,omitempty" yaml:"chartConfig,omitempty"`
	Cards       []MetricCard `json:"cards,omitempty" yaml:"cards,omitempty"`
}
