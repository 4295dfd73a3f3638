package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"energy-insights/internal/dashboard"
	"energy-insights/internal/metrics"
	"energy-insights/internal/scheduler"
)

// Refresher reloads every aggregate resource.
type Refresher interface {
	Refresh(ctx context.Context) error
	Snapshot() dashboard.Snapshot
}

// Service periodically reloads the dashboard session.
type Service struct {
	scheduler *scheduler.Scheduler
	session   Refresher
	logger    zerolog.Logger
}

// New constructs the refresh service.
func New(session Refresher, sched *scheduler.Scheduler, logger zerolog.Logger) *Service {
	return &Service{
		scheduler: sched,
		session:   session,
		logger:    logger.With().Str("component", "service").Logger(),
	}
}

// Run begins the refresh loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.Refresh)
}

// Refresh reloads the session once and logs a summary of the panels.
// Failed resources keep their last good data, so a partial failure is
// reported but does not abort the loop.
func (s *Service) Refresh(ctx context.Context, at time.Time) error {
	started := time.Now()
	err := s.session.Refresh(ctx)
	took := time.Since(started)
	snap := s.session.Snapshot()

	failed := 0
	for _, st := range Statuses(snap) {
		if st == dashboard.StatusFailed {
			failed++
		}
	}

	metrics.ObserveRefresh(took, failed)

	event := s.logger.Info()
	if failed > 0 {
		event = s.logger.Warn()
	}
	event.Time("at", at).
		Dur("took", took).
		Int("failed", failed).
		Str("department_total", snap.DepartmentCost.Data.Total.String()).
		Str("zone_total", snap.TimeZones.Data.GrandTotal.String()).
		Msg("dashboard refreshed")

	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// Statuses lists the slot status of each panel in layout order.
func Statuses(snap dashboard.Snapshot) []dashboard.Status {
	return []dashboard.Status{
		snap.DepartmentCost.Status,
		snap.AverageKWH.Status,
		snap.KWHParts.Status,
		snap.MoltenMetal.Status,
		snap.TimeZones.Status,
		snap.Daily.Status,
	}
}
