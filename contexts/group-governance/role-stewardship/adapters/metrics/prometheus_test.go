package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecordsOperationsAndTransitions(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheus(registry)

	m.ObserveOperation("express_trust", "ok", 15*time.Millisecond)
	m.ObserveOperation("express_trust", "ok", 5*time.Millisecond)
	m.ObserveOperation("express_trust", "role_busy", time.Second)
	m.RecordTransition("activated")
	m.RecordCapabilityLookup(true)
	m.RecordCapabilityLookup(false)
	m.RecordCapabilityLookup(false)

	if got := testutil.ToFloat64(m.operations.WithLabelValues("express_trust", "ok")); got != 2 {
		t.Fatalf("expected 2 ok operations, got %v", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("express_trust", "role_busy")); got != 1 {
		t.Fatalf("expected 1 busy operation, got %v", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("activated")); got != 1 {
		t.Fatalf("expected 1 activation, got %v", got)
	}
	if got := testutil.ToFloat64(m.capabilityLookups.WithLabelValues("false")); got != 2 {
		t.Fatalf("expected 2 cache misses, got %v", got)
	}
	if count := testutil.CollectAndCount(registry, "stewardship_operation_duration_seconds"); count != 1 {
		t.Fatalf("expected one histogram series, got %d", count)
	}
}
