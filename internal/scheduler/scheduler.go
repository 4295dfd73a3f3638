package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc is invoked on every interval with the scheduled tick time.
type TickFunc func(ctx context.Context, at time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval time.Duration
	// AlignToInterval fires on wall-clock multiples of Interval.
	AlignToInterval bool
	StartupDelay    time.Duration
}

// Scheduler drives periodic dashboard refreshes.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking tick at each interval until ctx is cancelled. A failing
// tick is logged and the schedule continues.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	next := s.nextTick(time.Now().UTC())
	for {
		if missed := s.missedTicks(next, time.Now().UTC()); missed > 0 {
			// A refresh outlasted the interval; panels would only see a burst
			// of back-to-back reloads, so the missed ticks are dropped.
			s.logger.Warn().Int("missed", missed).Dur("interval", s.opts.Interval).Msg("refresh overran interval; skipping ticks")
			next = next.Add(time.Duration(missed) * s.opts.Interval)
		}

		timer := time.NewTimer(time.Until(next))
		s.logger.Debug().Time("next_tick", next).Msg("waiting for next refresh")

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		at := s.tickStart(next)
		s.logger.Debug().Time("tick", at).Msg("refresh tick")

		started := time.Now()
		if err := tick(ctx, at); err != nil {
			s.logger.Error().Err(err).Time("tick", at).Dur("took", time.Since(started)).Msg("refresh tick failed")
		} else {
			s.logger.Debug().Time("tick", at).Dur("took", time.Since(started)).Msg("refresh tick done")
		}

		next = next.Add(s.opts.Interval)
	}
}

// missedTicks counts scheduled ticks at or before now that have not fired yet,
// not counting next itself.
func (s *Scheduler) missedTicks(next, now time.Time) int {
	if !now.After(next) {
		return 0
	}
	return int(now.Sub(next) / s.opts.Interval)
}

func (s *Scheduler) nextTick(now time.Time) time.Time {
	if !s.opts.AlignToInterval {
		return now.Add(s.opts.Interval)
	}
	bucket := now.Truncate(s.opts.Interval)
	if !bucket.After(now) {
		bucket = bucket.Add(s.opts.Interval)
	}
	return bucket
}

func (s *Scheduler) tickStart(t time.Time) time.Time {
	if !s.opts.AlignToInterval {
		return t
	}
	return t.Truncate(s.opts.Interval)
}
