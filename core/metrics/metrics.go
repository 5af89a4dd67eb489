package metrics

import "time"

// AnalysisRecord describes one finished orchestrator operation.
type AnalysisRecord struct {
	AnalysisID string
	ProjectID  string
	Operation  string
	Success    bool
	Elapsed    time.Duration
}

// MetricsSink records analysis telemetry. Implementations must be safe for
// concurrent use; operations may run in parallel.
type MetricsSink interface {
	RecordAnalysis(rec AnalysisRecord) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordAnalysis implements MetricsSink.
func (NopSink) RecordAnalysis(AnalysisRecord) error { return nil }

// MultiSink fans records out to several sinks, returning the first error.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAnalysis forwards the record to all sinks.
func (m *MultiSink) RecordAnalysis(rec AnalysisRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAnalysis(rec); err != nil {
			return err
		}
	}
	return nil
}
