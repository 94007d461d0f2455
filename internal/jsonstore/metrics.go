package jsonstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dukerupert/homedash/internal/fault"
)

// Metrics counts store operations per collection. One Metrics value is
// shared by every store of a process.
type Metrics struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "homedash",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by collection, operation and result.",
		}, []string{"collection", "op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "homedash",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Time spent in store operations, lock wait included.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"collection", "op"}),
	}
	m.registry.MustRegister(m.ops, m.duration)
	return m
}

func (m *Metrics) observe(collection, op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = string(fault.KindOf(err))
	}
	m.ops.WithLabelValues(collection, op, result).Inc()
	m.duration.WithLabelValues(collection, op).Observe(d.Seconds())
}

// WriteToTextfile dumps the current values in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
