// Package metrics exports lockkv store operations to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts and times store operations. It satisfies core.Metrics.
type Collector struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New creates a Collector and registers it on reg
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lockkv",
			Name:      "operations_total",
			Help:      "Store operations by operation and outcome",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lockkv",
			Name:      "operation_duration_seconds",
			Help:      "Store operation latency including both backing stores",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"op"}),
	}

	for _, col := range []prometheus.Collector{c.operations, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveOperation records one completed operation
func (c *Collector) ObserveOperation(op, outcome string, took time.Duration) {
	c.operations.WithLabelValues(op, outcome).Inc()
	c.duration.WithLabelValues(op).Observe(took.Seconds())
}
