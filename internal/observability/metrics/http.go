package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	turnsTotal             *prometheus.CounterVec
	turnDuration           *prometheus.HistogramVec
	turnPicks              *prometheus.HistogramVec
	collaboratorCallsTotal *prometheus.CounterVec
	liveSessions           prometheus.Gauge
	cacheLookupsTotal      *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "da",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "da",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "da",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	turnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "da",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total completed conversation turns by resolving branch.",
		},
		[]string{"service", "branch"},
	)
	turnDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "da",
			Subsystem: "chat",
			Name:      "turn_duration_seconds",
			Help:      "Conversation turn duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "branch"},
	)
	turnPicks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "da",
			Subsystem: "chat",
			Name:      "turn_picks",
			Help:      "Distribution of recommendations surfaced per search turn.",
			Buckets:   []float64{0, 1, 2, 3},
		},
		[]string{"service"},
	)
	collaboratorCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "da",
			Subsystem: "chat",
			Name:      "collaborator_calls_total",
			Help:      "Total collaborator calls by target and outcome.",
		},
		[]string{"service", "collaborator", "outcome"},
	)
	liveSessions := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "da",
			Subsystem: "chat",
			Name:      "live_sessions",
			Help:      "Number of conversation sessions currently registered.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	cacheLookupsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "da",
			Subsystem: "geosearch",
			Name:      "cache_lookups_total",
			Help:      "Total nearby cache lookups by result.",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		turnsTotal,
		turnDuration,
		turnPicks,
		collaboratorCallsTotal,
		liveSessions,
		cacheLookupsTotal,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		turnsTotal:             turnsTotal,
		turnDuration:           turnDuration,
		turnPicks:              turnPicks,
		collaboratorCallsTotal: collaboratorCallsTotal,
		liveSessions:           liveSessions,
		cacheLookupsTotal:      cacheLookupsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/sessions/"):
		return "/v1/sessions/{session_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordTurn(service, branch string, picks int, duration time.Duration) {
	if branch == "" {
		branch = "unknown"
	}
	m.turnsTotal.WithLabelValues(service, branch).Inc()
	m.turnDuration.WithLabelValues(service, branch).Observe(duration.Seconds())
	if picks >= 0 {
		m.turnPicks.WithLabelValues(service).Observe(float64(picks))
	}
}

func (m *HTTPServerMetrics) RecordCollaboratorCall(service, collaborator string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.collaboratorCallsTotal.WithLabelValues(service, collaborator, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordCacheLookup(service string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(service, result).Inc()
}

func (m *HTTPServerMetrics) SessionOpened() {
	m.liveSessions.Inc()
}

func (m *HTTPServerMetrics) SessionClosed() {
	m.liveSessions.Dec()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
