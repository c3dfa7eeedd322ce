// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts profile fetches by outcome and times them. It implements
// the pipeline's metrics hook and feeds the /metrics endpoint.
type Metrics struct {
	fetches  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics builds the fetch collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compound_engine_fetches_total",
			Help: "Profile fetches by outcome (built, cache_hit, not_found, error).",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "compound_engine_fetch_duration_seconds",
			Help:    "Wall time per profile fetch, cache hits included.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.fetches, m.duration)
	return m
}

// RecordFetch implements the pipeline metrics hook.
func (m *Metrics) RecordFetch(outcome string, elapsed time.Duration) {
	m.fetches.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}
