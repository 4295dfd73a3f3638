package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeReady  = "ready"
	OutcomeFailed = "failed"
	// OutcomeStale labels completions discarded because a newer request superseded them.
	OutcomeStale = "stale"

	QueryResolved = "resolved"
	QueryFallback = "fallback"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "energy_insights",
			Name:      "api_requests_total",
			Help:      "Requests issued to the aggregate API, partitioned by resource and outcome.",
		},
		[]string{"resource", "outcome"},
	)

	requestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "energy_insights",
			Name:      "api_request_seconds",
			Help:      "Aggregate API request latency in seconds.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"resource"},
	)

	slotUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "energy_insights",
			Name:      "slot_updates_total",
			Help:      "Fetch slot transitions, partitioned by slot and outcome.",
		},
		[]string{"slot", "outcome"},
	)

	refreshSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "energy_insights",
			Name:      "refresh_seconds",
			Help:      "Duration of a full dashboard refresh in seconds.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	failedSlots = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "energy_insights",
			Name:      "failed_slots",
			Help:      "Panels whose latest fetch failed, as of the last refresh.",
		},
	)

	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "energy_insights",
			Name:      "queries_total",
			Help:      "Natural-language queries submitted, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register attaches the collectors to reg.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		requestsTotal,
		requestDurationSeconds,
		slotUpdatesTotal,
		refreshSeconds,
		failedSlots,
		queriesTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRequest records an API round trip.
func ObserveRequest(resource string, duration time.Duration, outcome string) {
	if outcome != OutcomeFailed {
		outcome = OutcomeReady
	}
	requestsTotal.WithLabelValues(resource, outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	requestDurationSeconds.WithLabelValues(resource).Observe(duration.Seconds())
}

// ObserveSlot records a fetch slot transition.
func ObserveSlot(slot, outcome string) {
	slotUpdatesTotal.WithLabelValues(slot, outcome).Inc()
}

// ObserveRefresh records a completed dashboard refresh.
func ObserveRefresh(duration time.Duration, failed int) {
	if duration < 0 {
		duration = 0
	}
	refreshSeconds.Observe(duration.Seconds())
	failedSlots.Set(float64(failed))
}

// ObserveQuery records the terminal state of a query submission.
func ObserveQuery(outcome string) {
	if outcome != QueryResolved {
		outcome = QueryFallback
	}
	queriesTotal.WithLabelValues(outcome).Inc()
}
