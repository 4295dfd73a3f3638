package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"energy-insights/internal/dashboard"
	"energy-insights/internal/metrics"
	"energy-insights/internal/scheduler"
)

type stubRefresher struct {
	calls  int
	err    error
	snap   dashboard.Snapshot
	onCall func(n int)
}

func (s *stubRefresher) Refresh(context.Context) error {
	s.calls++
	if s.onCall != nil {
		s.onCall(s.calls)
	}
	return s.err
}

func (s *stubRefresher) Snapshot() dashboard.Snapshot {
	return s.snap
}

func TestRefreshWrapsSessionError(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubRefresher{err: boom}
	svc := New(stub, nil, zerolog.Nop())

	err := svc.Refresh(context.Background(), time.Now())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one refresh, got %d", stub.calls)
	}
}

func TestRunRefreshesOnSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stub := &stubRefresher{err: errors.New("partial"), onCall: func(n int) {
		if n == 2 {
			cancel()
		}
	}}
	sched := scheduler.New(scheduler.Options{Interval: 5 * time.Millisecond}, zerolog.Nop())
	err := New(stub, sched, zerolog.Nop()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("a failed refresh must not stop the loop, got %d calls", stub.calls)
	}
}

func TestRunRequiresScheduler(t *testing.T) {
	svc := New(&stubRefresher{}, nil, zerolog.Nop())
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("run without scheduler should fail")
	}
}

func TestStatusesFollowLayoutOrder(t *testing.T) {
	var snap dashboard.Snapshot
	snap.TimeZones.Status = dashboard.StatusFailed
	got := Statuses(snap)
	if len(got) != 6 || got[4] != dashboard.StatusFailed || got[0] != dashboard.StatusIdle {
		t.Fatalf("unexpected statuses %v", got)
	}
}

func TestRefreshReportsFailedSlots(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}

	stub := &stubRefresher{}
	stub.snap.AverageKWH.Status = dashboard.StatusFailed
	stub.snap.Daily.Status = dashboard.StatusFailed
	if err := New(stub, nil, zerolog.Nop()).Refresh(context.Background(), time.Now()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "energy_insights_failed_slots" {
			continue
		}
		if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 2 {
			t.Fatalf("failed slots = %v, want 2", got)
		}
		return
	}
	t.Fatal("failed slots gauge not exported")
}
