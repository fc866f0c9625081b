// Package metrics exposes Prometheus counters for requests, provider calls and
// stored artifacts.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider call outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

// Recorder is what the HTTP layer and the generation service report to.
type Recorder interface {
	ObserveRequest(method, route, status string, durationSeconds float64)
	IncProviderCall(provider, outcome string)
	ObserveArtifact(folder string, bytes int64)
}

// Noop implements Recorder without emitting anything.
type Noop struct{}

func (Noop) ObserveRequest(string, string, string, float64) {}
func (Noop) IncProviderCall(string, string)                 {}
func (Noop) ObserveArtifact(string, int64)                  {}

// Prom implements Recorder backed by Prometheus collectors.
type Prom struct {
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	providerCalls *prometheus.CounterVec
	artifacts     *prometheus.CounterVec
	artifactBytes *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

// NewProm registers the collectors on reg. A nil reg uses a fresh registry,
// which Handler then serves.
func NewProm(namespace string, reg *prometheus.Registry) *Prom {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	p := &Prom{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "route"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Generation provider calls by provider and outcome",
		}, []string{"provider", "outcome"}),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_stored_total",
			Help:      "Artifacts written by storage folder",
		}, []string{"folder"}),
		artifactBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_bytes_total",
			Help:      "Bytes written by storage folder",
		}, []string{"folder"}),
		gatherer: reg,
	}
	reg.MustRegister(p.requests, p.latency, p.providerCalls, p.artifacts, p.artifactBytes)
	return p
}

func (p *Prom) ObserveRequest(method, route, status string, durationSeconds float64) {
	p.requests.WithLabelValues(method, route, status).Inc()
	p.latency.WithLabelValues(method, route).Observe(durationSeconds)
}

func (p *Prom) IncProviderCall(provider, outcome string) {
	p.providerCalls.WithLabelValues(provider, outcome).Inc()
}

func (p *Prom) ObserveArtifact(folder string, bytes int64) {
	p.artifacts.WithLabelValues(folder).Inc()
	p.artifactBytes.WithLabelValues(folder).Add(float64(bytes))
}

// Handler serves the registry the collectors were registered on.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

var (
	_ Recorder = Noop{}
	_ Recorder = (*Prom)(nil)
)
