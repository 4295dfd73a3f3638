package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"energy-insights/internal/calc"
	"energy-insights/internal/dataset"
	"energy-insights/internal/fetcher"
	"energy-insights/internal/metrics"
	"energy-insights/internal/telemetry"
)

// ErrClosed is returned once the session has been torn down.
var ErrClosed = errors.New("session closed")

// Selection holds the user inputs that shape the panels.
type Selection struct {
	AvgMode    AvgMode     `json:"avgMode" yaml:"avgMode"`
	Machine    string      `json:"machine" yaml:"machine"`
	Day        string      `json:"day" yaml:"day"`
	Department string      `json:"department" yaml:"department"`
	Metric     calc.Metric `json:"metric" yaml:"metric"`
}

// Thresholds are the limits the annotators compare against.
type Thresholds struct {
	KWHPerTonne         float64
	SpecificConsumption float64
}

// Options configure a Session.
type Options struct {
	Selection  Selection
	Thresholds Thresholds
}

// Session owns one fetch slot per aggregate resource and the current selection.
type Session struct {
	source     fetcher.AggregateSource
	logger     zerolog.Logger
	thresholds Thresholds

	departments *Slot[DepartmentCost]
	avgKWH      *Slot[dataset.Chart]
	kwhParts    *Slot[KWHParts]
	molten      *Slot[dataset.Chart]
	zones       *Slot[calc.ZoneCost]
	daily       *Slot[[]telemetry.DailyConsumptionDay]

	mu  sync.RWMutex
	sel Selection
}

// NewSession creates a session with every slot idle and holding an empty placeholder.
func NewSession(source fetcher.AggregateSource, opts Options, logger zerolog.Logger) *Session {
	if opts.Thresholds.KWHPerTonne <= 0 {
		opts.Thresholds.KWHPerTonne = calc.KWHPerTonneLimit
	}
	if opts.Thresholds.SpecificConsumption <= 0 {
		opts.Thresholds.SpecificConsumption = calc.SpecificConsumptionCeiling
	}
	if opts.Selection.AvgMode == "" {
		opts.Selection.AvgMode = ModeCombined
	}
	if opts.Selection.Metric == "" {
		opts.Selection.Metric = calc.MetricConsumption
	}

	th := opts.Thresholds
	return &Session{
		source:      source,
		logger:      logger.With().Str("component", "session").Logger(),
		thresholds:  th,
		departments: NewSlot("department_cost", DepartmentCostChart(nil)),
		avgKWH:      NewSlot("avg_kwh", AverageKWHChart(nil, opts.Selection.AvgMode, th.KWHPerTonne)),
		kwhParts:    NewSlot("kwh_parts", KWHPartsChart(nil, opts.Selection.Machine)),
		molten:      NewSlot("molten_metal", MoltenMetalChart(nil, th.SpecificConsumption)),
		zones:       NewSlot("time_zone", calc.ZoneCostChart(nil)),
		daily:       NewSlot[[]telemetry.DailyConsumptionDay]("daily_consumption", nil),
		sel:         opts.Selection,
	}
}

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel
}

// Load fetches every resource concurrently. Each failure is isolated to its
// own slot; the first error is returned for reporting only.
func (s *Session) Load(ctx context.Context) error {
	// Reading the selection and beginning every slot under one lock keeps
	// sequence order consistent with selection changes.
	s.mu.Lock()
	sel := s.sel
	jobs := []job{
		s.startDepartments(),
		s.startAverageKWH(sel.AvgMode),
		s.startKWHParts(sel.Machine),
		s.startMoltenMetal(),
		s.startTimeZones(),
		s.startDaily(),
	}
	s.mu.Unlock()

	var g errgroup.Group
	for _, j := range jobs {
		if j == nil {
			return ErrClosed
		}
		g.Go(func() error { return j(ctx) })
	}
	return g.Wait()
}

// Refresh is Load under the name the scheduler uses.
func (s *Session) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// SetAvgMode switches the KWH/tonne projection and refetches that resource.
func (s *Session) SetAvgMode(ctx context.Context, mode AvgMode) error {
	if _, err := ParseAvgMode(string(mode)); err != nil {
		return err
	}
	s.mu.Lock()
	s.sel.AvgMode = mode
	j := s.startAverageKWH(mode)
	s.mu.Unlock()
	if j == nil {
		return ErrClosed
	}
	return j(ctx)
}

// SetMachine filters the KWH/part trend and refetches that resource. An empty
// id clears the filter. A machine missing from loaded data is rejected.
func (s *Session) SetMachine(ctx context.Context, id string) error {
	if id != "" {
		if parts, ok := s.kwhParts.Retained(); ok && !parts.HasMachine(id) {
			return fmt.Errorf("machine %s: %w", id, calc.ErrNoMatchingSlice)
		}
	}
	s.mu.Lock()
	s.sel.Machine = id
	j := s.startKWHParts(id)
	s.mu.Unlock()
	if j == nil {
		return ErrClosed
	}
	return j(ctx)
}

// SelectDay changes the daily slice date. Once daily data is loaded only
// dates present in it are accepted.
func (s *Session) SelectDay(date string) error {
	if days, ok := s.daily.Retained(); ok && !containsDay(days, date) {
		return fmt.Errorf("day %s: %w", date, calc.ErrNoMatchingSlice)
	}
	s.mu.Lock()
	s.sel.Day = date
	s.mu.Unlock()
	return nil
}

// SelectDepartment changes the daily slice department.
func (s *Session) SelectDepartment(name string) {
	s.mu.Lock()
	s.sel.Department = name
	s.mu.Unlock()
}

// SelectMetric changes which hourly reading the daily slice plots.
func (s *Session) SelectMetric(m calc.Metric) error {
	if _, err := calc.ParseMetric(string(m)); err != nil {
		return err
	}
	s.mu.Lock()
	s.sel.Metric = m
	s.mu.Unlock()
	return nil
}

// Apply sets every field of sel, refetching only the resources whose inputs changed.
func (s *Session) Apply(ctx context.Context, sel Selection) error {
	cur := s.Selection()
	if sel.Metric != "" && sel.Metric != cur.Metric {
		if err := s.SelectMetric(sel.Metric); err != nil {
			return err
		}
	}
	if sel.Day != "" && sel.Day != cur.Day {
		if err := s.SelectDay(sel.Day); err != nil {
			return err
		}
	}
	if sel.Department != "" && sel.Department != cur.Department {
		s.SelectDepartment(sel.Department)
	}
	if sel.AvgMode != "" && sel.AvgMode != cur.AvgMode {
		if err := s.SetAvgMode(ctx, sel.AvgMode); err != nil {
			return err
		}
	}
	if sel.Machine != cur.Machine {
		if err := s.SetMachine(ctx, sel.Machine); err != nil {
			return err
		}
	}
	return nil
}

// Close tears the session down; completions arriving afterwards are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments.Close()
	s.avgKWH.Close()
	s.kwhParts.Close()
	s.molten.Close()
	s.zones.Close()
	s.daily.Close()
}

// job completes a fetch whose slot has already begun.
type job func(ctx context.Context) error

func (s *Session) startDepartments() job {
	return start(s, s.departments, fetcher.ResourceDepartmentCosts, s.source.DepartmentCosts, DepartmentCostChart)
}

func (s *Session) startAverageKWH(mode AvgMode) job {
	threshold := s.thresholds.KWHPerTonne
	return start(s, s.avgKWH, fetcher.ResourceAverageKWH, s.source.AverageKWH, func(rows []telemetry.AvgKWHRow) dataset.Chart {
		return AverageKWHChart(rows, mode, threshold)
	})
}

func (s *Session) startKWHParts(machine string) job {
	return start(s, s.kwhParts, fetcher.ResourceKWHParts, s.source.KWHParts, func(rows []telemetry.KWHPartsRow) KWHParts {
		return KWHPartsChart(rows, machine)
	})
}

func (s *Session) startMoltenMetal() job {
	ceiling := s.thresholds.SpecificConsumption
	return start(s, s.molten, fetcher.ResourceConsumptionMolten, s.source.ConsumptionMoltenMetal, func(rows []telemetry.MoltenMetalRow) dataset.Chart {
		return MoltenMetalChart(rows, ceiling)
	})
}

func (s *Session) startTimeZones() job {
	return start(s, s.zones, fetcher.ResourceTimeZone, s.source.TimeZoneCosts, calc.ZoneCostChart)
}

func (s *Session) startDaily() job {
	return start(s, s.daily, fetcher.ResourceDailyConsumption, s.source.DailyConsumption, func(days []telemetry.DailyConsumptionDay) []telemetry.DailyConsumptionDay {
		return days
	})
}

// start moves slot to loading and returns the job that fetches and settles
// it, or nil once the slot is closed. Callers hold s.mu so the sequence
// number is taken together with the selection the build closure captured.
// A completion that lost its sequence number to a newer request is discarded.
func start[R, T any](s *Session, slot *Slot[T], res fetcher.Resource, fetch func(context.Context) (R, error), build func(R) T) job {
	seq, ok := slot.Begin()
	if !ok {
		return nil
	}
	log := s.logger.With().Str("resource", string(res)).Uint64("seq", seq).Logger()

	return func(ctx context.Context) error {
		raw, err := fetch(ctx)
		if err != nil {
			if !slot.Fail(seq) {
				log.Debug().Err(err).Msg("discarding stale failure")
				metrics.ObserveSlot(slot.Name(), metrics.OutcomeStale)
				return nil
			}
			log.Error().Err(err).Msg("fetch failed")
			metrics.ObserveSlot(slot.Name(), metrics.OutcomeFailed)
			return fmt.Errorf("load %s: %w", res, err)
		}

		if !slot.Resolve(seq, build(raw)) {
			log.Debug().Msg("discarding stale response")
			metrics.ObserveSlot(slot.Name(), metrics.OutcomeStale)
			return nil
		}
		metrics.ObserveSlot(slot.Name(), metrics.OutcomeReady)
		return nil
	}
}

func containsDay(days []telemetry.DailyConsumptionDay, date string) bool {
	for _, d := range days {
		if d.Date == date {
			return true
		}
	}
	return false
}
