package fetcher

import (
	"context"
	"errors"

	"energy-insights/internal/telemetry"
)

var (
	// ErrTransport covers unreachable hosts and non-2xx responses.
	ErrTransport = errors.New("transport error")
	// ErrMalformedPayload covers bodies that are not JSON or miss required fields.
	ErrMalformedPayload = errors.New("malformed payload")
)

// Resource names a remote endpoint relative to the API base URL.
type Resource string

const (
	ResourceDepartmentCosts   Resource = "aggregate-energy-costs"
	ResourceAverageKWH        Resource = "avgKWH"
	ResourceKWHParts          Resource = "KWHParts"
	ResourceConsumptionMolten Resource = "ConsumptionMoltenMetal"
	ResourceTimeZone          Resource = "TimeZone"
	ResourceDailyConsumption  Resource = "consumption"
	ResourceChat              Resource = "chat-response"
)

// AggregateSource retrieves the six raw aggregate resources.
type AggregateSource interface {
	DepartmentCosts(ctx context.Context) ([]telemetry.DepartmentCost, error)
	AverageKWH(ctx context.Context) ([]telemetry.AvgKWHRow, error)
	KWHParts(ctx context.Context) ([]telemetry.KWHPartsRow, error)
	ConsumptionMoltenMetal(ctx context.Context) ([]telemetry.MoltenMetalRow, error)
	TimeZoneCosts(ctx context.Context) ([]telemetry.TimeZoneBucket, error)
	DailyConsumption(ctx context.Context) ([]telemetry.DailyConsumptionDay, error)
}

// Generator posts a prompt to the generation endpoint and returns the raw body.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}
