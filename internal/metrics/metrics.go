package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metric collectors for the Sangyan API.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ledger metrics.
	LedgerTransactionsTotal      *prometheus.CounterVec
	LedgerInsufficientFundsTotal prometheus.Counter

	// Profile metrics.
	ProfileCreatesTotal prometheus.Counter

	// Session metrics.
	SessionTransitionsTotal *prometheus.CounterVec

	// Auth metrics.
	AuthFailuresTotal  *prometheus.CounterVec
	AuthSuccessesTotal *prometheus.CounterVec

	// Rate limiting metrics.
	RateLimitRejectionsTotal prometheus.Counter

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all Prometheus metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sangyan_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sangyan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		LedgerTransactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sangyan_ledger_transactions_total",
			Help: "Total number of committed ledger transactions.",
		}, []string{"kind"}),

		LedgerInsufficientFundsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sangyan_ledger_insufficient_funds_total",
			Help: "Total number of spends rejected for insufficient funds.",
		}),

		ProfileCreatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sangyan_profile_creates_total",
			Help: "Total number of profile records created with a welcome bonus.",
		}),

		SessionTransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sangyan_session_transitions_total",
			Help: "Total number of session state transitions.",
		}, []string{"state"}),

		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sangyan_auth_failures_total",
			Help: "Total number of authentication failures.",
		}, []string{"auth_type"}),

		AuthSuccessesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sangyan_auth_successes_total",
			Help: "Total number of successful authentications.",
		}, []string{"auth_type"}),

		RateLimitRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sangyan_ratelimit_rejections_total",
			Help: "Total number of rate-limited ledger requests.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sangyan_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LedgerTransactionsTotal,
		m.LedgerInsufficientFundsTotal,
		m.ProfileCreatesTotal,
		m.SessionTransitionsTotal,
		m.AuthFailuresTotal,
		m.AuthSuccessesTotal,
		m.RateLimitRejectionsTotal,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records a completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, pathPattern string, statusCode int, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, fmt.Sprintf("%d", statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(seconds)
}

// IncLedgerTransaction increments the committed-transaction counter.
func (m *Metrics) IncLedgerTransaction(kind string) {
	m.LedgerTransactionsTotal.WithLabelValues(kind).Inc()
}

// IncInsufficientFunds increments the rejected-spend counter.
func (m *Metrics) IncInsufficientFunds() {
	m.LedgerInsufficientFundsTotal.Inc()
}

// IncProfileCreate increments the profile-creation counter.
func (m *Metrics) IncProfileCreate() {
	m.ProfileCreatesTotal.Inc()
}

// IncSessionTransition increments the transition counter for a state.
func (m *Metrics) IncSessionTransition(state string) {
	m.SessionTransitionsTotal.WithLabelValues(state).Inc()
}

// IncAuthFailure increments the auth failure counter for the given type.
func (m *Metrics) IncAuthFailure(authType string) {
	m.AuthFailuresTotal.WithLabelValues(authType).Inc()
}

// IncAuthSuccess increments the auth success counter for the given type.
func (m *Metrics) IncAuthSuccess(authType string) {
	m.AuthSuccessesTotal.WithLabelValues(authType).Inc()
}

// IncRateLimitRejection increments the rate-limit rejection counter.
func (m *Metrics) IncRateLimitRejection() {
	m.RateLimitRejectionsTotal.Inc()
}
