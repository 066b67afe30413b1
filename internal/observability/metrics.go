package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	fetchAttempts *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec

	recordsStored *prometheus.CounterVec
	linksCreated  *prometheus.CounterVec
	syncRuns      *prometheus.CounterVec
	syncDuration  *prometheus.HistogramVec
}

var (
	initMu   sync.Mutex
	instance *Metrics
)

// Init builds the process-wide metrics once. It returns nil when disabled; every
// Metrics method is a no-op on a nil receiver.
func Init(enabled bool) *Metrics {
	initMu.Lock()
	defer initMu.Unlock()
	if !enabled {
		return nil
	}
	if instance == nil {
		instance = New()
	}
	return instance
}

func Current() *Metrics {
	initMu.Lock()
	defer initMu.Unlock()
	return instance
}

// New builds metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swapi_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "swapi_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "swapi_http_inflight_requests",
			Help: "HTTP requests currently being served",
		}),
		fetchAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swapi_fetch_attempts_total",
			Help: "Remote fetch attempts by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		fetchLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "swapi_fetch_duration_seconds",
			Help:    "Latency of a single remote fetch attempt",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		recordsStored: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swapi_records_stored_total",
			Help: "Rows newly inserted by the upsert store",
		}, []string{"kind"}),
		linksCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swapi_links_created_total",
			Help: "Association rows created by the relationship filler",
		}, []string{"table"}),
		syncRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "swapi_sync_runs_total",
			Help: "Sync invocations by scope and final state",
		}, []string{"scope", "state"}),
		syncDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "swapi_sync_duration_seconds",
			Help:    "Wall time of sync invocations",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"scope"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) DecInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAPIRequest(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ObserveFetchAttempt(endpoint, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(endpoint, outcome).Inc()
	m.fetchLatency.WithLabelValues(endpoint).Observe(dur.Seconds())
}

func (m *Metrics) AddRecordsStored(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recordsStored.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) AddLinksCreated(table string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.linksCreated.WithLabelValues(table).Add(float64(n))
}

func (m *Metrics) ObserveSyncRun(scope, state string, dur time.Duration) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(scope, state).Inc()
	m.syncDuration.WithLabelValues(scope).Observe(dur.Seconds())
}
