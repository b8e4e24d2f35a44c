// Package observability exposes Prometheus metrics and health probes on a
// listener separate from the API.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded by ObserveAuth.
const (
	AuthAuthenticated = "authenticated"
	AuthAnonymous     = "anonymous"
	AuthInvalidToken  = "invalid_token"
	AuthAccountGone   = "account_gone"
	AuthError         = "error"
)

// Metrics contains the service's custom Prometheus metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthTotal       *prometheus.CounterVec
	RateLimited     prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musify_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "musify_http_request_duration_seconds",
				Help:    "HTTP request latency by route and method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		AuthTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "musify_auth_requests_total",
				Help: "Total number of request authentications by outcome",
			},
			[]string{"outcome"},
		),
		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "musify_auth_rate_limited_total",
				Help: "Total number of auth requests rejected by the rate limiter",
			},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.AuthTotal, m.RateLimited)
	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveAuth records the outcome of authenticating one request.
func (m *Metrics) ObserveAuth(outcome string) {
	m.AuthTotal.WithLabelValues(outcome).Inc()
}
