// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordFetch("built", 120*time.Millisecond)
	m.RecordFetch("built", 80*time.Millisecond)
	m.RecordFetch("error", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.fetches.WithLabelValues("built")); got != 2 {
		t.Errorf("built count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues("error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var sawDuration bool
	for _, mf := range families {
		if mf.GetName() == "compound_engine_fetch_duration_seconds" {
			sawDuration = true
			if n := mf.GetMetric()[0].GetHistogram().GetSampleCount(); n != 3 {
				t.Errorf("duration samples = %d, want 3", n)
			}
		}
	}
	if !sawDuration {
		t.Error("duration histogram not registered")
	}
}
