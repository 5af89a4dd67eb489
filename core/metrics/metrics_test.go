package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/mreynaud/schedcore/core/factory"
)

type countingSink struct {
	records []AnalysisRecord
	err     error
}

func (c *countingSink) RecordAnalysis(rec AnalysisRecord) error {
	c.records = append(c.records, rec)
	return c.err
}

func TestMultiSink_FansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	sink := NewMultiSink(a, b)
	rec := AnalysisRecord{AnalysisID: "x", Operation: "critical_path", Success: true, Elapsed: time.Millisecond}
	if err := sink.RecordAnalysis(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(a.records) != 1 || len(b.records) != 1 {
		t.Fatalf("expected both sinks to receive the record got %d/%d", len(a.records), len(b.records))
	}
}

func TestMultiSink_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	a := &countingSink{err: boom}
	b := &countingSink{}
	sink := NewMultiSink(a, b)
	if err := sink.RecordAnalysis(AnalysisRecord{}); !errors.Is(err, boom) {
		t.Fatalf("expected first sink error got %v", err)
	}
	if len(b.records) != 0 {
		t.Fatalf("expected second sink untouched after error")
	}
}

func TestNewMetricsSink_NoConfig(t *testing.T) {
	sink, err := NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := sink.(NopSink); !ok {
		t.Fatalf("expected NopSink got %T", sink)
	}
}

func TestNewMetricsSink_UnknownType(t *testing.T) {
	_, err := NewMetricsSink([]factory.ModuleConfig{{Type: "no-such-sink"}})
	if err == nil {
		t.Fatalf("expected error for unregistered sink type")
	}
}
