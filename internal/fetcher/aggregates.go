package fetcher

import (
	"context"
	"fmt"

	"energy-insights/internal/telemetry"
)

// Envelopes use pointer slices so a missing or null top-level field is
// distinguishable from an empty result.

type departmentCostsPayload struct {
	AggregatedCosts *[]telemetry.DepartmentCost `json:"aggregatedCosts"`
}

type aggregatedPayload[T any] struct {
	AggregatedData *[]T `json:"aggregatedData"`
}

func (p aggregatedPayload[T]) rows(res Resource) ([]T, error) {
	if p.AggregatedData == nil {
		return nil, fmt.Errorf("%s: %w: aggregatedData missing", res, ErrMalformedPayload)
	}
	return *p.AggregatedData, nil
}

func fetchAggregated[T any](ctx context.Context, c *Client, res Resource) ([]T, error) {
	var payload aggregatedPayload[T]
	if err := c.getJSON(ctx, res, &payload); err != nil {
		return nil, err
	}
	return payload.rows(res)
}

// DepartmentCosts fetches per-department energy cost totals.
func (c *Client) DepartmentCosts(ctx context.Context) ([]telemetry.DepartmentCost, error) {
	var payload departmentCostsPayload
	if err := c.getJSON(ctx, ResourceDepartmentCosts, &payload); err != nil {
		return nil, err
	}
	if payload.AggregatedCosts == nil {
		return nil, fmt.Errorf("%s: %w: aggregatedCosts missing", ResourceDepartmentCosts, ErrMalformedPayload)
	}
	return *payload.AggregatedCosts, nil
}

// AverageKWH fetches daily IF1/IF2 KWH per tonne averages.
func (c *Client) AverageKWH(ctx context.Context) ([]telemetry.AvgKWHRow, error) {
	return fetchAggregated[telemetry.AvgKWHRow](ctx, c, ResourceAverageKWH)
}

// KWHParts fetches per-machine KWH per part by date.
func (c *Client) KWHParts(ctx context.Context) ([]telemetry.KWHPartsRow, error) {
	rows, err := fetchAggregated[telemetry.KWHPartsRow](ctx, c, ResourceKWHParts)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if row.MachineData == nil {
			return nil, fmt.Errorf("%s: %w: row %d missing machineData", ResourceKWHParts, ErrMalformedPayload, i)
		}
	}
	return rows, nil
}

// ConsumptionMoltenMetal fetches daily consumption against molten metal output.
func (c *Client) ConsumptionMoltenMetal(ctx context.Context) ([]telemetry.MoltenMetalRow, error) {
	return fetchAggregated[telemetry.MoltenMetalRow](ctx, c, ResourceConsumptionMolten)
}

// TimeZoneCosts fetches daily cost split by tariff zone.
func (c *Client) TimeZoneCosts(ctx context.Context) ([]telemetry.TimeZoneBucket, error) {
	return fetchAggregated[telemetry.TimeZoneBucket](ctx, c, ResourceTimeZone)
}

// DailyConsumption fetches hourly machine profiles for every day.
func (c *Client) DailyConsumption(ctx context.Context) ([]telemetry.DailyConsumptionDay, error) {
	days, err := fetchAggregated[telemetry.DailyConsumptionDay](ctx, c, ResourceDailyConsumption)
	if err != nil {
		return nil, err
	}
	for _, day := range days {
		if err := day.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", ResourceDailyConsumption, ErrMalformedPayload, err)
		}
	}
	return days, nil
}
