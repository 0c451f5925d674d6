package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcomes
const (
	RefreshSuccess           = "success"
	RefreshNoToken           = "no_refresh_token"
	RefreshRequestFailed     = "request_failed"
	RefreshMalformedResponse = "malformed_response"
	RefreshDiscarded         = "discarded"
)

// Metrics holds the dashboard collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	refreshTotal   *prometheus.CounterVec
	guardDecisions *prometheus.CounterVec
	authenticated  prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		refreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flexcrew",
			Subsystem: "session",
			Name:      "refresh_total",
			Help:      "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flexcrew",
			Subsystem: "route_guard",
			Name:      "decisions_total",
			Help:      "Route guard decisions by guard and result.",
		}, []string{"guard", "decision"}),
		authenticated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flexcrew",
			Subsystem: "session",
			Name:      "authenticated",
			Help:      "1 when the dashboard holds an access token.",
		}),
	}
	reg.MustRegister(
		m.refreshTotal,
		m.guardDecisions,
		m.authenticated,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveGuard(guard, decision string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(guard, decision).Inc()
}

func (m *Metrics) SetAuthenticated(authenticated bool) {
	if m == nil {
		return
	}
	if authenticated {
		m.authenticated.Set(1)
		return
	}
	m.authenticated.Set(0)
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
