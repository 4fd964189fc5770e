// Package metrics exposes Prometheus instruments for the matcher service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume_matcher"

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeFailed   = "failed"
	OutcomeSkipped  = "skipped"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	scoringCalls     *prometheus.CounterVec
	scoringFallbacks *prometheus.CounterVec
	scoringLatency   prometheus.Histogram

	rankingRuns      prometheus.Counter
	candidatesScored prometheus.Histogram
	shortlistSize    prometheus.Histogram
	uploads          *prometheus.CounterVec
	notifications    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		scoringCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "calls_total",
			Help:      "Scoring engine calls by outcome.",
		}, []string{"outcome"}),
		scoringFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "fallbacks_total",
			Help:      "Scoring fallbacks by reason.",
		}, []string{"reason"}),
		scoringLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "duration_seconds",
			Help:      "Latency of a single scoring call.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45, 90},
		}),
		rankingRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "runs_total",
			Help:      "Completed ranking runs.",
		}),
		candidatesScored: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "candidates",
			Help:      "Candidates scored per ranking run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		shortlistSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "shortlist_size",
			Help:      "Entries retained above the threshold per run.",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "uploads_total",
			Help:      "Resume uploads by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Shortlist notifications by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.scoringCalls,
		m.scoringFallbacks,
		m.scoringLatency,
		m.rankingRuns,
		m.candidatesScored,
		m.shortlistSize,
		m.uploads,
		m.notifications,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ScoringCalls(outcome string) prometheus.Counter {
	return m.scoringCalls.WithLabelValues(outcome)
}

func (m *Metrics) ScoringFallbacks(reason string) prometheus.Counter {
	return m.scoringFallbacks.WithLabelValues(reason)
}

// The recorders below are nil-safe so components can run without metrics.

func (m *Metrics) ObserveScoring(d time.Duration, fallbackReason string) {
	if m == nil {
		return
	}
	m.scoringLatency.Observe(d.Seconds())
	if fallbackReason == "" {
		m.scoringCalls.WithLabelValues(OutcomeOK).Inc()
		return
	}
	m.scoringCalls.WithLabelValues(OutcomeFallback).Inc()
	m.scoringFallbacks.WithLabelValues(fallbackReason).Inc()
}

func (m *Metrics) ObserveRanking(candidates, shortlisted int) {
	if m == nil {
		return
	}
	m.rankingRuns.Inc()
	m.candidatesScored.Observe(float64(candidates))
	m.shortlistSize.Observe(float64(shortlisted))
}

func (m *Metrics) IncUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncNotification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}
