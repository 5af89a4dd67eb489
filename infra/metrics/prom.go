package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/mreynaud/schedcore/core/metrics"
)

// PromSink records analysis events in Prometheus metrics.
type PromSink struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewPromSink registers analysis metrics on the default Prometheus
// registerer. The Prometheus HTTP server is the embedding application's
// concern.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_operations_total",
		Help: "Total number of scheduling analysis operations",
	}, []string{"operation", "success"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Wall time spent per scheduling analysis operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	if err := reg.Register(operations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			operations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	return &PromSink{operations: operations, duration: duration}, nil
}

// RecordAnalysis increments the operation counter and observes its duration.
func (s *PromSink) RecordAnalysis(rec coremetrics.AnalysisRecord) error {
	s.operations.WithLabelValues(rec.Operation, strconv.FormatBool(rec.Success)).Inc()
	s.duration.WithLabelValues(rec.Operation).Observe(rec.Elapsed.Seconds())
	return nil
}
