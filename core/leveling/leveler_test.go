package leveling

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/mreynaud/schedcore/core/model"
)

var base = time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return base.AddDate(0, 0, n) }

func taskWithAssignment(id, resource string, alloc float64, from, to int) model.Task {
	return model.Task{
		ID:           id,
		DurationDays: float64(to - from),
		Assignments: []model.ResourceAssignment{{
			ResourceID:        resource,
			TaskID:            id,
			AllocationPercent: alloc,
			Start:             day(from),
			Finish:            day(to),
		}},
	}
}

func TestLevel_NoOverAllocation(t *testing.T) {
	tasks := []model.Task{
		taskWithAssignment("t1", "dev-1", 50, 0, 5),
		taskWithAssignment("t2", "dev-1", 50, 0, 5),
	}
	res := NewLeveler(Config{}).Level(tasks, nil, 5)
	if len(res.Delays) != 0 {
		t.Fatalf("expected no delays got %v", res.Delays)
	}
	if res.LeveledDurationDays != 5 {
		t.Fatalf("expected duration unchanged got %v", res.LeveledDurationDays)
	}
	if !res.Accepted {
		t.Fatalf("expected level schedule accepted")
	}
	if len(res.Profiles) != 1 || !res.Profiles[0].Level {
		t.Fatalf("expected level profile got %+v", res.Profiles)
	}
}

func TestLevel_ProposesDelays(t *testing.T) {
	tasks := []model.Task{
		taskWithAssignment("t1", "dev-1", 70, 0, 5),
		taskWithAssignment("t2", "dev-1", 70, 0, 5),
	}
	res := NewLeveler(Config{}).Level(tasks, nil, 5)
	if len(res.Delays) == 0 {
		t.Fatalf("expected delay proposals")
	}
	var sum float64
	for _, d := range res.Delays {
		if d.DelayDays <= 0 {
			t.Errorf("delay for %s must be positive got %v", d.TaskID, d.DelayDays)
		}
		if !strings.Contains(d.Reason, "dev-1") {
			t.Errorf("delay reason should name the resource: %q", d.Reason)
		}
		sum += d.DelayDays
	}
	if got := res.OriginalDurationDays + sum; got != res.LeveledDurationDays {
		t.Fatalf("leveled duration %v should equal original plus delays %v", res.LeveledDurationDays, got)
	}
}

func TestLevel_DeterministicAcrossRuns(t *testing.T) {
	tasks := []model.Task{
		taskWithAssignment("t1", "dev-1", 90, 0, 4),
		taskWithAssignment("t2", "dev-1", 90, 1, 6),
		taskWithAssignment("t3", "dev-1", 90, 2, 8),
	}
	l := NewLeveler(Config{})
	first := l.Level(tasks, nil, 8)
	second := l.Level(tasks, nil, 8)
	if len(first.Delays) != len(second.Delays) {
		t.Fatalf("delay count changed between runs")
	}
	for i := range first.Delays {
		if first.Delays[i] != second.Delays[i] {
			t.Fatalf("delay %d changed between runs: %+v vs %+v", i, first.Delays[i], second.Delays[i])
		}
	}
}

func TestLevel_RejectsLargeExtension(t *testing.T) {
	tasks := []model.Task{
		taskWithAssignment("t1", "dev-1", 300, 0, 10),
		taskWithAssignment("t2", "dev-1", 300, 0, 10),
	}
	res := NewLeveler(Config{AcceptableExtensionPercent: 10}).Level(tasks, nil, 10)
	if res.Accepted {
		t.Fatalf("expected rejection for %v%% extension", res.ExtensionPercent)
	}
	if !strings.HasPrefix(res.Recommendation, "reject") {
		t.Fatalf("expected reject recommendation got %q", res.Recommendation)
	}
}

func TestBuildProfile_Smoothness(t *testing.T) {
	flat := buildProfile("dev-1", []model.ResourceAssignment{
		{ResourceID: "dev-1", TaskID: "t1", AllocationPercent: 80, Start: day(0), Finish: day(10)},
	}, 100)
	if flat.Smoothness != 0 {
		t.Errorf("constant profile should have zero smoothness got %v", flat.Smoothness)
	}
	if flat.PeakPercent != 80 {
		t.Errorf("expected peak 80 got %v", flat.PeakPercent)
	}

	spiky := buildProfile("dev-1", []model.ResourceAssignment{
		{ResourceID: "dev-1", TaskID: "t1", AllocationPercent: 80, Start: day(0), Finish: day(1)},
		{ResourceID: "dev-1", TaskID: "t2", AllocationPercent: 20, Start: day(1), Finish: day(10)},
	}, 100)
	if spiky.Smoothness <= flat.Smoothness {
		t.Errorf("spiky profile should score rougher than flat: %v <= %v", spiky.Smoothness, flat.Smoothness)
	}
}

func TestOverAllocationPeriods(t *testing.T) {
	p := buildProfile("dev-1", []model.ResourceAssignment{
		{ResourceID: "dev-1", TaskID: "t1", AllocationPercent: 60, Start: day(0), Finish: day(6)},
		{ResourceID: "dev-1", TaskID: "t2", AllocationPercent: 60, Start: day(2), Finish: day(4)},
	}, 100)
	periods := overAllocationPeriods(p)
	if len(periods) != 1 {
		t.Fatalf("expected one over-allocation period got %d", len(periods))
	}
	period := periods[0]
	if !period.Start.Equal(day(2)) || !period.End.Equal(day(4)) {
		t.Fatalf("expected period [%v,%v) got [%v,%v)", day(2), day(4), period.Start, period.End)
	}
	if math.Abs(period.PeakPercent-120) > 1e-9 {
		t.Fatalf("expected peak 120 got %v", period.PeakPercent)
	}
	if len(period.TaskIDs) != 2 {
		t.Fatalf("expected both tasks contributing got %v", period.TaskIDs)
	}
}
