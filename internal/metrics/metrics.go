package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. It satisfies the ledger and
// request queue recorder interfaces.
type Metrics struct {
	registry *prometheus.Registry

	ledgerCommits    *prometheus.CounterVec
	ledgerVolume     *prometheus.CounterVec
	ledgerRejections *prometheus.CounterVec
	requestsCreated  *prometheus.CounterVec
	requestDecisions *prometheus.CounterVec
	sessionsActive   prometheus.Gauge

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers every collector on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ledgerCommits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safi_ledger_commits_total",
			Help: "Committed ledger transactions, labeled by kind",
		}, []string{"kind"}),
		ledgerVolume: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safi_ledger_volume_total",
			Help: "Sum of committed amounts, labeled by kind",
		}, []string{"kind"}),
		ledgerRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safi_ledger_rejections_total",
			Help: "Rejected ledger commands, labeled by kind and reason",
		}, []string{"kind", "reason"}),
		requestsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safi_admin_requests_total",
			Help: "Administrative requests enqueued, labeled by type",
		}, []string{"type"}),
		requestDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safi_admin_request_transitions_total",
			Help: "Applied request status transitions",
		}, []string{"from", "to"}),
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "safi_session_active",
			Help: "1 while a customer session is open",
		}),
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "safi_http_requests_total",
			Help: "Total HTTP requests processed, labeled by status code",
		}, []string{"method", "endpoint", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "safi_http_request_duration_seconds",
			Help:    "Latency distribution of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "endpoint"}),
	}
}

func (m *Metrics) ObserveCommit(kind string, amount float64) {
	m.ledgerCommits.WithLabelValues(kind).Inc()
	m.ledgerVolume.WithLabelValues(kind).Add(amount)
}

func (m *Metrics) ObserveRejection(kind, reason string) {
	m.ledgerRejections.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) ObserveRequest(kind string) {
	m.requestsCreated.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveTransition(from, to string) {
	m.requestDecisions.WithLabelValues(from, to).Inc()
}

// SetSessionActive records whether a session is open.
func (m *Metrics) SetSessionActive(active bool) {
	if active {
		m.sessionsActive.Set(1)
		return
	}
	m.sessionsActive.Set(0)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests and observes their latency, labeled by the
// matched chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		m.httpRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
	})
}
