// Package metrics exposes Prometheus collectors for the checker. All
// methods are safe on a nil *Metrics so callers can leave metrics off.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry and the collectors registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	searches      *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	keyRetired    *prometheus.CounterVec
	breakerState  *prometheus.GaugeVec
	checkDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "originality_search_attempts_total",
			Help: "Search attempts by provider and outcome",
		}, []string{"provider", "outcome"}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "originality_page_fetches_total",
			Help: "Page fetches by outcome",
		}, []string{"outcome"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "originality_cache_lookups_total",
			Help: "Cache lookups by cache and result",
		}, []string{"cache", "result"}),
		keyRetired: f.NewCounterVec(prometheus.CounterOpts{
			Name: "originality_keys_retired_total",
			Help: "Provider keys retired after auth or quota failures",
		}, []string{"provider"}),
		breakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "originality_provider_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
		}, []string{"provider"}),
		checkDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "originality_check_duration_seconds",
			Help:    "End-to-end check duration by outcome",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SearchAttempt(provider, outcome string) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) Fetch(outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
}

// CacheLookup has the signature expected by cache.NewStore observers.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) KeyRetired(provider string) {
	if m == nil {
		return
	}
	m.keyRetired.WithLabelValues(provider).Inc()
}

func (m *Metrics) BreakerState(provider string, state int) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(provider).Set(float64(state))
}

func (m *Metrics) CheckDuration(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.checkDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
