package metrics

import (
	"net/http"

	"github.com/jrsteele09/go-bnb-gateway/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bnb"

// Metrics holds the gateway's Prometheus collectors on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	established prometheus.Counter
	cleared     *prometheus.CounterVec
	refreshes   *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

var _ sessions.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		established: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "established_total",
			Help:      "Sessions established after login or signup.",
		}),
		cleared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "cleared_total",
			Help:      "Sessions cleared, by reason.",
		}, []string{"reason"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refresh_total",
			Help:      "Access token refresh attempts, by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by method and status code.",
		}, []string{"method", "code"}),
	}
	m.registry.MustRegister(
		m.established,
		m.cleared,
		m.refreshes,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) SessionEstablished() {
	m.established.Inc()
}

func (m *Metrics) SessionCleared(reason sessions.ClearReason) {
	m.cleared.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) RefreshAttempted(outcome sessions.RefreshOutcome) {
	m.refreshes.WithLabelValues(string(outcome)).Inc()
}

// InstrumentHandler counts requests served by next.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(m.requests, next)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
