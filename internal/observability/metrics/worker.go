package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	eventsTotal *prometheus.CounterVec
	eventPicks  *prometheus.HistogramVec
	turnSeconds *prometheus.HistogramVec
}

func NewWorkerMetrics() *WorkerMetrics {
	registry := prometheus.NewRegistry()

	eventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "da",
			Subsystem: "worker",
			Name:      "turn_events_total",
			Help:      "Total consumed turn events by resolving branch.",
		},
		[]string{"service", "branch"},
	)
	eventPicks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "da",
			Subsystem: "worker",
			Name:      "turn_event_picks",
			Help:      "Distribution of recommendations per consumed turn event.",
			Buckets:   []float64{0, 1, 2, 3},
		},
		[]string{"service"},
	)
	turnSeconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "da",
			Subsystem: "worker",
			Name:      "turn_event_duration_seconds",
			Help:      "Turn duration reported by consumed events.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "branch"},
	)

	registry.MustRegister(eventsTotal, eventPicks, turnSeconds)

	return &WorkerMetrics{
		registry:    registry,
		eventsTotal: eventsTotal,
		eventPicks:  eventPicks,
		turnSeconds: turnSeconds,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveTurnEvent(service, branch string, picks int, durationMS float64) {
	if branch == "" {
		branch = "unknown"
	}
	m.eventsTotal.WithLabelValues(service, branch).Inc()
	if picks >= 0 {
		m.eventPicks.WithLabelValues(service).Observe(float64(picks))
	}
	if durationMS >= 0 {
		m.turnSeconds.WithLabelValues(service, branch).Observe(durationMS / 1000.0)
	}
}
