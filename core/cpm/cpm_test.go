package cpm

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/mreynaud/schedcore/core/model"
)

func chain(durations ...float64) []model.Task {
	tasks := make([]model.Task, len(durations))
	for i, d := range durations {
		tasks[i] = model.Task{ID: string(rune('a' + i)), DurationDays: d}
		if i > 0 {
			tasks[i].Dependencies = []model.Dependency{{PredecessorID: tasks[i-1].ID}}
		}
	}
	return tasks
}

func TestAnalyze_ThreeTaskChain(t *testing.T) {
	res, err := Analyze(chain(5, 3, 4))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.DurationDays != 12 {
		t.Fatalf("expected duration 12 got %v", res.DurationDays)
	}
	if len(res.CriticalPath) != 3 {
		t.Fatalf("expected all three tasks critical got %v", res.CriticalPath)
	}
	for id, tm := range res.Timings {
		if tm.TotalFloat != 0 {
			t.Errorf("task %s: expected zero float got %v", id, tm.TotalFloat)
		}
		if !tm.Critical {
			t.Errorf("task %s: expected critical", id)
		}
	}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(res.CriticalPath, want) {
		t.Fatalf("expected path %v got %v", want, res.CriticalPath)
	}
}

func TestAnalyze_PassInvariants(t *testing.T) {
	// Diamond with a short slack branch.
	tasks := []model.Task{
		{ID: "start", DurationDays: 2},
		{ID: "long", DurationDays: 8, Dependencies: []model.Dependency{{PredecessorID: "start"}}},
		{ID: "short", DurationDays: 3, Dependencies: []model.Dependency{{PredecessorID: "start"}}},
		{ID: "end", DurationDays: 1, Dependencies: []model.Dependency{{PredecessorID: "long"}, {PredecessorID: "short"}}},
	}
	res, err := Analyze(tasks)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for id, tm := range res.Timings {
		if got := tm.EarliestStart + tm.DurationDays; got != tm.EarliestEnd {
			t.Errorf("task %s: ES+duration=%v want EF %v", id, got, tm.EarliestEnd)
		}
		if got := tm.LatestStart + tm.DurationDays; got != tm.LatestEnd {
			t.Errorf("task %s: LS+duration=%v want LF %v", id, got, tm.LatestEnd)
		}
		if tm.TotalFloat < 0 {
			t.Errorf("task %s: negative float %v", id, tm.TotalFloat)
		}
		if tm.Critical != (tm.TotalFloat == 0) {
			t.Errorf("task %s: critical flag disagrees with float %v", id, tm.TotalFloat)
		}
	}
	if res.DurationDays != 11 {
		t.Fatalf("expected duration 11 got %v", res.DurationDays)
	}
	slack := res.Timings["short"]
	if slack.TotalFloat != 5 {
		t.Fatalf("expected short branch float 5 got %v", slack.TotalFloat)
	}
	if slack.FreeFloat != 5 {
		t.Fatalf("expected short branch free float 5 got %v", slack.FreeFloat)
	}
}

func TestAnalyze_CycleRejected(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", DurationDays: 1, Dependencies: []model.Dependency{{PredecessorID: "c"}}},
		{ID: "b", DurationDays: 1, Dependencies: []model.Dependency{{PredecessorID: "a"}}},
		{ID: "c", DurationDays: 1, Dependencies: []model.Dependency{{PredecessorID: "b"}}},
	}
	_, err := Analyze(tasks)
	var cerr *model.CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CycleError got %v", err)
	}
	if len(cerr.Path) < 3 {
		t.Fatalf("expected cycle path got %v", cerr.Path)
	}
}

func TestAnalyze_UnknownPredecessor(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", DurationDays: 1, Dependencies: []model.Dependency{{PredecessorID: "ghost"}}},
	}
	_, err := Analyze(tasks)
	var uerr *model.UnknownTaskError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UnknownTaskError got %v", err)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	tasks := chain(5, 3, 4)
	first, err := Analyze(tasks)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Analyze(tasks)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first.CriticalPath, second.CriticalPath) {
		t.Fatalf("critical path changed between runs")
	}
	for id := range first.Timings {
		if *first.Timings[id] != *second.Timings[id] {
			t.Fatalf("task %s timing changed between runs", id)
		}
	}
}

func TestAnalyze_NonFSMarkedApproximate(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", DurationDays: 2},
		{ID: "b", DurationDays: 3, Dependencies: []model.Dependency{{PredecessorID: "a", Type: model.StartToStart}}},
	}
	res, err := Analyze(tasks)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !res.Timings["b"].ApproxTiming {
		t.Fatalf("expected SS dependency to mark timing approximate")
	}
	// The pass itself still treats the edge as finish-to-start.
	if got := res.Timings["b"].EarliestStart; math.Abs(got-2) > 1e-9 {
		t.Fatalf("expected FS approximation ES 2 got %v", got)
	}
}
