// Package cpm implements critical path method analysis over a task
// dependency graph: cycle validation, forward/backward pass, float and the
// critical path itself.
package cpm

import (
	"math"
	"sort"

	"github.com/mreynaud/schedcore/core/model"
)

// floatEps absorbs float64 noise when deciding whether float is zero.
const floatEps = 1e-9

// TaskTiming holds the pass results for one task, in days from project start.
type TaskTiming struct {
	TaskID        string
	DurationDays  float64
	EarliestStart float64
	EarliestEnd   float64
	LatestStart   float64
	LatestEnd     float64
	TotalFloat    float64
	FreeFloat     float64
	Critical      bool
	// ApproxTiming is set when the task carries a non finish-to-start
	// dependency or a lag. The pass treats those edges as plain
	// finish-to-start, so the reported timing is an approximation.
	ApproxTiming bool
}

// Result is the full critical path analysis for one task snapshot.
type Result struct {
	Timings      map[string]*TaskTiming
	Order        []string // topological order used by the passes
	CriticalPath []string // critical tasks ordered by earliest start
	DurationDays float64
}

// Analyze validates the graph and runs the forward and backward passes.
// A cyclic graph is rejected with model.CycleError; a dependency on an
// unknown task with model.UnknownTaskError.
func Analyze(tasks []model.Task) (*Result, error) {
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	succs := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			if _, ok := byID[dep.PredecessorID]; !ok {
				return nil, &model.UnknownTaskError{TaskID: dep.PredecessorID, RefBy: t.ID}
			}
			succs[dep.PredecessorID] = append(succs[dep.PredecessorID], t.ID)
		}
	}
	order, err := topoOrder(byID)
	if err != nil {
		return nil, err
	}

	res := &Result{Timings: make(map[string]*TaskTiming, len(tasks)), Order: order}
	for _, id := range order {
		t := byID[id]
		tm := &TaskTiming{TaskID: id, DurationDays: t.DurationDays}
		for _, dep := range t.Dependencies {
			if dep.Type != model.FinishToStart || dep.LagDays != 0 {
				tm.ApproxTiming = true
			}
		}
		res.Timings[id] = tm
	}

	// Forward pass: ES = max EF over predecessors, EF = ES + duration.
	for _, id := range order {
		t := byID[id]
		tm := res.Timings[id]
		es := 0.0
		for _, dep := range t.Dependencies {
			if ef := res.Timings[dep.PredecessorID].EarliestEnd; ef > es {
				es = ef
			}
		}
		tm.EarliestStart = es
		tm.EarliestEnd = es + t.DurationDays
	}

	// Project duration is the latest finish among sinks.
	duration := 0.0
	for _, id := range order {
		if len(succs[id]) == 0 && res.Timings[id].EarliestEnd > duration {
			duration = res.Timings[id].EarliestEnd
		}
	}
	res.DurationDays = duration

	// Backward pass in reverse topological order: LF = min LS over
	// successors, seeded with the project duration at the sinks.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		tm := res.Timings[id]
		lf := duration
		for _, succ := range succs[id] {
			if ls := res.Timings[succ].LatestStart; ls < lf {
				lf = ls
			}
		}
		tm.LatestEnd = lf
		tm.LatestStart = lf - tm.DurationDays
		tm.TotalFloat = tm.LatestStart - tm.EarliestStart
		if tm.TotalFloat < 0 && tm.TotalFloat > -floatEps {
			tm.TotalFloat = 0
		}
		tm.Critical = math.Abs(tm.TotalFloat) <= floatEps
	}

	// Free float: slack before the earliest successor start.
	for _, id := range order {
		tm := res.Timings[id]
		free := duration - tm.EarliestEnd
		for _, succ := range succs[id] {
			if s := res.Timings[succ].EarliestStart - tm.EarliestEnd; s < free {
				free = s
			}
		}
		if free < 0 && free > -floatEps {
			free = 0
		}
		tm.FreeFloat = free
	}

	for _, id := range order {
		if res.Timings[id].Critical {
			res.CriticalPath = append(res.CriticalPath, id)
		}
	}
	sort.SliceStable(res.CriticalPath, func(i, j int) bool {
		a, b := res.Timings[res.CriticalPath[i]], res.Timings[res.CriticalPath[j]]
		if a.EarliestStart != b.EarliestStart {
			return a.EarliestStart < b.EarliestStart
		}
		return a.TaskID < b.TaskID
	})
	return res, nil
}

// dfs marks for cycle detection.
const (
	unvisited = iota
	visiting
	visited
)

// topoOrder walks the graph depth-first with three-state marks. It returns
// tasks in topological order or a CycleError naming the cycle.
func topoOrder(tasks map[string]model.Task) ([]string, error) {
	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	state := make(map[string]int, len(tasks))
	var order []string
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visited:
			return nil
		case visiting:
			return &model.CycleError{Path: cyclePath(stack, id)}
		}
		state[id] = visiting
		stack = append(stack, id)
		preds := append([]string(nil), tasks[id].PredecessorIDs()...)
		sort.Strings(preds)
		for _, pred := range preds {
			if err := visit(pred); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = visited
		order = append(order, id)
		return nil
	}
	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// cyclePath trims the DFS stack to the segment forming the cycle and closes
// it with the repeated node.
func cyclePath(stack []string, repeat string) []string {
	for i, id := range stack {
		if id == repeat {
			path := append([]string(nil), stack[i:]...)
			return append(path, repeat)
		}
	}
	return []string{repeat, repeat}
}
