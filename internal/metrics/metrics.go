// SPDX-License-Identifier: Apache-2.0

// Package metrics provides Prometheus metrics for the extraction engine.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sofproj/sof-mcp/internal/sof"
)

const namespace = "sof"

// Document outcome labels.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid_input"
	StatusError   = "error"
)

// Metrics holds the extraction collectors.
type Metrics struct {
	DocumentsTotal     *prometheus.CounterVec
	EventsTotal        *prometheus.CounterVec
	ResolutionMisses   prometheus.Counter
	WarningsTotal      *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram

	registry prometheus.Gatherer
}

// New creates the collectors and registers them on reg. A nil reg uses a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{registry: reg}

	m.DocumentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_total",
		Help:      "Number of documents processed by outcome",
	}, []string{"status"})

	m.EventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Number of events extracted by event type",
	}, []string{"event_type"})

	m.ResolutionMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolution_misses_total",
		Help:      "Number of time expressions that could not be resolved to a calendar value",
	})

	m.WarningsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "warnings_total",
		Help:      "Number of extraction warnings by kind",
	}, []string{"kind"})

	m.ExtractionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "extraction_duration_seconds",
		Help:      "Duration of a single document extraction in seconds",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	reg.MustRegister(
		m.DocumentsTotal, m.EventsTotal, m.ResolutionMisses,
		m.WarningsTotal, m.ExtractionDuration,
	)
	return m
}

// RecordDocument records one extraction outcome.
func (m *Metrics) RecordDocument(status string, duration time.Duration) {
	m.DocumentsTotal.WithLabelValues(status).Inc()
	m.ExtractionDuration.Observe(duration.Seconds())
}

// RecordResult counts the events, warnings and resolution misses of a result.
func (m *Metrics) RecordResult(res sof.Result, misses int) {
	for _, ev := range res.Events {
		m.EventsTotal.WithLabelValues(string(ev.Type)).Inc()
	}
	for _, w := range res.Warnings {
		m.WarningsTotal.WithLabelValues(w.Kind).Inc()
	}
	if misses > 0 {
		m.ResolutionMisses.Add(float64(misses))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server exposes /metrics and /healthz on addr.
type Server struct {
	server *http.Server
}

// NewServer builds the metrics HTTP server.
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{server: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
}

// Handler returns the server's mux.
func (s *Server) Handler() http.Handler { return s.server.Handler }

func (s *Server) Serve() error                       { return s.server.ListenAndServe() }
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }
