package conflict

import (
	"testing"
	"time"

	"github.com/mreynaud/schedcore/core/model"
)

var base = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return base.AddDate(0, 0, n) }

func assignment(task string, alloc float64, from, to int) model.ResourceAssignment {
	return model.ResourceAssignment{
		ResourceID:        "dev-1",
		TaskID:            task,
		AllocationPercent: alloc,
		Start:             day(from),
		Finish:            day(to),
	}
}

func TestDetect_FullOverlap(t *testing.T) {
	assignments := []model.ResourceAssignment{
		assignment("t1", 70, 0, 5),
		assignment("t2", 70, 0, 5),
	}
	conflicts := Detect(assignments, nil, Unbounded())
	if len(conflicts) != 1 {
		t.Fatalf("expected exactly one conflict got %d", len(conflicts))
	}
	c := conflicts[0]
	if c.TotalAllocationPercent != 140 {
		t.Errorf("expected total 140 got %v", c.TotalAllocationPercent)
	}
	if c.CapacityPercent != 100 {
		t.Errorf("expected capacity 100 got %v", c.CapacityPercent)
	}
	if !c.Start.Equal(day(0)) || !c.End.Equal(day(5)) {
		t.Errorf("expected interval [%v,%v) got [%v,%v)", day(0), day(5), c.Start, c.End)
	}
	if len(c.Assignments) != 2 {
		t.Errorf("expected two contributing assignments got %d", len(c.Assignments))
	}
}

func TestDetect_BackToBackNoConflict(t *testing.T) {
	// t2 starts exactly when t1 ends; the intervals never truly intersect.
	assignments := []model.ResourceAssignment{
		assignment("t1", 70, 0, 5),
		assignment("t2", 70, 5, 10),
	}
	if conflicts := Detect(assignments, nil, Unbounded()); len(conflicts) != 0 {
		t.Fatalf("expected no conflicts got %v", conflicts)
	}
}

func TestDetect_RespectsCapacity(t *testing.T) {
	assignments := []model.ResourceAssignment{
		assignment("t1", 70, 0, 5),
		assignment("t2", 70, 0, 5),
	}
	caps := map[string]float64{"dev-1": 150}
	if conflicts := Detect(assignments, caps, Unbounded()); len(conflicts) != 0 {
		t.Fatalf("expected no conflicts at 150%% capacity got %v", conflicts)
	}
}

func TestDetect_WindowClipping(t *testing.T) {
	assignments := []model.ResourceAssignment{
		assignment("t1", 70, 0, 10),
		assignment("t2", 70, 0, 10),
	}
	window := Window{Start: day(2), End: day(4)}
	conflicts := Detect(assignments, nil, window)
	if len(conflicts) != 1 {
		t.Fatalf("expected one conflict got %d", len(conflicts))
	}
	if !conflicts[0].Start.Equal(day(2)) || !conflicts[0].End.Equal(day(4)) {
		t.Fatalf("expected conflict clipped to window got [%v,%v)", conflicts[0].Start, conflicts[0].End)
	}
}

func TestDetect_CoalescesIdenticalAdjacentSegments(t *testing.T) {
	// Task t2 is assigned in two back-to-back pieces with the same
	// allocation. The sweep sees an event at day 5 but the contributor
	// set and total are unchanged, so a single conflict must come out.
	assignments := []model.ResourceAssignment{
		assignment("t1", 70, 0, 10),
		assignment("t2", 70, 0, 5),
		assignment("t2", 70, 5, 10),
	}
	conflicts := Detect(assignments, nil, Unbounded())
	if len(conflicts) != 1 {
		t.Fatalf("expected coalesced single conflict got %d", len(conflicts))
	}
	if !conflicts[0].Start.Equal(day(0)) || !conflicts[0].End.Equal(day(10)) {
		t.Fatalf("expected merged interval [%v,%v) got [%v,%v)", day(0), day(10), conflicts[0].Start, conflicts[0].End)
	}
}

func TestDetect_SeparateResources(t *testing.T) {
	a := assignment("t1", 80, 0, 5)
	b := assignment("t2", 80, 0, 5)
	b.ResourceID = "dev-2"
	if conflicts := Detect([]model.ResourceAssignment{a, b}, nil, Unbounded()); len(conflicts) != 0 {
		t.Fatalf("expected no cross-resource conflicts got %v", conflicts)
	}
}
