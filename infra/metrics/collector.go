package metrics

import (
	"context"

	"github.com/mreynaud/schedcore/core/events"
	coremetrics "github.com/mreynaud/schedcore/core/metrics"
	"github.com/mreynaud/schedcore/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records a metric per
// finished analysis. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.AnalysisCompleted:
					_ = sink.RecordAnalysis(coremetrics.AnalysisRecord{
						AnalysisID: e.AnalysisID,
						ProjectID:  e.ProjectID,
						Operation:  e.Operation,
						Success:    true,
						Elapsed:    e.Elapsed,
					})
				case events.AnalysisFailed:
					_ = sink.RecordAnalysis(coremetrics.AnalysisRecord{
						AnalysisID: e.AnalysisID,
						ProjectID:  e.ProjectID,
						Operation:  e.Operation,
						Success:    false,
						Elapsed:    e.Elapsed,
					})
				}
			}
		}
	}()
}
