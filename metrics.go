package jwtauth

import (
	"errors"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/profile-service/jwtauth/core"
	"github.com/profile-service/jwtauth/jwks"
)

// Metrics is the sink core.Core and jwks.Provider report to.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	ObserveHistogram(name string, value float64, tags map[string]string)
}

var (
	_ Metrics      = (*PrometheusMetrics)(nil)
	_ core.Metrics = (*PrometheusMetrics)(nil)
	_ jwks.Metrics = (*PrometheusMetrics)(nil)
)

var help = map[string]string{
	core.MetricValidations:        "Bearer token checks by result.",
	core.MetricValidationDuration: "Time spent checking a bearer token, in seconds.",
	jwks.MetricCacheLookups:       "JWKS cache lookups by result.",
	jwks.MetricFetches:            "JWKS fetches from the identity provider by result.",
	jwks.MetricFetchDuration:      "Time spent fetching the JWKS, in seconds.",
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) IncCounter(string, map[string]string)                {}
func (NoopMetrics) ObserveHistogram(string, float64, map[string]string) {}

// PrometheusMetrics creates a collector per metric name on first use and
// registers it with its Registerer. Label names come from the tags of that
// first call, so every call for a name must use the same tag keys.
type PrometheusMetrics struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetrics returns metrics registered with reg, or with
// prometheus.DefaultRegisterer when reg is nil.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		registerer: reg,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (m *PrometheusMetrics) IncCounter(name string, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.counters[name]
	if !ok {
		vec = register(m.registerer, prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: name, Help: helpFor(name)},
			labelNames(tags),
		))
		m.counters[name] = vec
	}
	m.mu.Unlock()

	vec.With(tags).Inc()
}

func (m *PrometheusMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.histograms[name]
	if !ok {
		vec = register(m.registerer, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: name, Help: helpFor(name), Buckets: prometheus.DefBuckets},
			labelNames(tags),
		))
		m.histograms[name] = vec
	}
	m.mu.Unlock()

	vec.With(tags).Observe(value)
}

// register registers c, or returns the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func helpFor(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}

func labelNames(tags map[string]string) []string {
	names := make([]string, 0, len(tags))
	for k := range tags {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
