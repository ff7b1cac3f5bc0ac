package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("Failed to create collector: %v", err)
	}

	c.ObserveOperation("get", "ok", 2*time.Millisecond)
	c.ObserveOperation("get", "ok", time.Millisecond)
	c.ObserveOperation("get", "missing_key", time.Millisecond)

	if got := testutil.ToFloat64(c.operations.WithLabelValues("get", "ok")); got != 2 {
		t.Errorf("ok count mismatch: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.operations.WithLabelValues("get", "missing_key")); got != 1 {
		t.Errorf("missing_key count mismatch: got %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.duration); n != 1 {
		t.Errorf("Expected 1 histogram series, got %d", n)
	}
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("Failed to create collector: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Error("Expected error registering twice on one registry")
	}
}
