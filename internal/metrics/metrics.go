// Package metrics exposes scoring and HTTP counters on a private prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dotcommander/praxy/internal/scoring"
)

// Metrics implements scoring.Observer
type Metrics struct {
	registry        *prometheus.Registry
	scoringTotal    *prometheus.CounterVec
	scoringDuration *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
}

var _ scoring.Observer = (*Metrics)(nil)

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scoringTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "praxy",
			Name:      "scoring_total",
			Help:      "Scored submissions by domain, producing path and fallback reason.",
		}, []string{"domain", "source", "reason"}),
		scoringDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "praxy",
			Name:      "scoring_duration_seconds",
			Help:      "Time to score a submission, including any AI round trip.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"domain", "source"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "praxy",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}

	m.registry.MustRegister(m.scoringTotal, m.scoringDuration, m.httpRequests)
	return m
}

// ObserveScoring records one scored submission
func (m *Metrics) ObserveScoring(domain string, source scoring.Source, reason scoring.Reason, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := string(reason)
	if label == "" {
		label = "none"
	}
	m.scoringTotal.WithLabelValues(domain, string(source), label).Inc()
	m.scoringDuration.WithLabelValues(domain, string(source)).Observe(elapsed.Seconds())
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(route string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
