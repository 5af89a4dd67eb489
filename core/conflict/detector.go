// Package conflict detects resource over-allocation with an event sweep
// over assignment intervals. All state is function-local; the detector can
// be called concurrently.
package conflict

import (
	"math"
	"sort"
	"time"

	"github.com/mreynaud/schedcore/core/model"
)

const allocEps = 1e-9

// Window bounds the analysis. A zero Start means unbounded past, a zero End
// unbounded future.
type Window struct {
	Start time.Time
	End   time.Time
}

// Unbounded returns a window covering all time.
func Unbounded() Window { return Window{} }

// clip bounds the segment [from, to) to the window and reports whether a
// positive-length segment remains.
func (w Window) clip(from, to time.Time) (time.Time, time.Time, bool) {
	if !w.Start.IsZero() && from.Before(w.Start) {
		from = w.Start
	}
	if !w.End.IsZero() && to.After(w.End) {
		to = w.End
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// Conflict is a period where a resource's summed allocation exceeds its
// capacity.
type Conflict struct {
	ResourceID             string
	Start                  time.Time
	End                    time.Time
	TotalAllocationPercent float64
	CapacityPercent        float64
	Assignments            []model.ResourceAssignment
}

type eventKind int

const (
	eventStart eventKind = iota
	eventEnd
)

type event struct {
	at   time.Time
	kind eventKind
	idx  int // index into the per-resource assignment slice
}

// Detect sweeps all assignments and returns over-allocation conflicts per
// resource, clipped to the window. Capacities map resource identifiers to a
// maximum allocation percent; missing resources default to 100.
func Detect(assignments []model.ResourceAssignment, capacities map[string]float64, window Window) []Conflict {
	byResource := make(map[string][]model.ResourceAssignment)
	for _, a := range assignments {
		byResource[a.ResourceID] = append(byResource[a.ResourceID], a)
	}
	resourceIDs := make([]string, 0, len(byResource))
	for id := range byResource {
		resourceIDs = append(resourceIDs, id)
	}
	sort.Strings(resourceIDs)

	var conflicts []Conflict
	for _, id := range resourceIDs {
		capacity := model.DefaultCapacityPercent
		if c, ok := capacities[id]; ok && c > 0 {
			capacity = c
		}
		conflicts = append(conflicts, sweepResource(id, byResource[id], capacity, window)...)
	}
	return conflicts
}

// sweepResource runs the event sweep for one resource.
func sweepResource(resourceID string, assignments []model.ResourceAssignment, capacity float64, window Window) []Conflict {
	events := make([]event, 0, 2*len(assignments))
	for i, a := range assignments {
		if !a.Start.Before(a.Finish) {
			continue // zero-length assignments cannot overlap anything
		}
		events = append(events, event{at: a.Start, kind: eventStart, idx: i})
		events = append(events, event{at: a.Finish, kind: eventEnd, idx: i})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		if events[i].kind != events[j].kind {
			return events[i].kind == eventStart
		}
		return assignments[events[i].idx].TaskID < assignments[events[j].idx].TaskID
	})

	active := make(map[int]struct{})
	var out []Conflict
	var prev time.Time
	havePrev := false
	i := 0
	for i < len(events) {
		at := events[i].at
		if havePrev && at.After(prev) && len(active) > 0 {
			if c, ok := segmentConflict(resourceID, assignments, active, capacity, prev, at, window); ok {
				out = coalesce(out, c)
			}
		}
		for i < len(events) && events[i].at.Equal(at) {
			if events[i].kind == eventStart {
				active[events[i].idx] = struct{}{}
			} else {
				delete(active, events[i].idx)
			}
			i++
		}
		prev = at
		havePrev = true
	}
	return out
}

// segmentConflict sums the active allocations over [from, to) and builds a
// conflict record when the sum exceeds capacity.
func segmentConflict(resourceID string, assignments []model.ResourceAssignment, active map[int]struct{}, capacity float64, from, to time.Time, window Window) (Conflict, bool) {
	total := 0.0
	idxs := make([]int, 0, len(active))
	for idx := range active {
		total += assignments[idx].AllocationPercent
		idxs = append(idxs, idx)
	}
	if total <= capacity+allocEps {
		return Conflict{}, false
	}
	from, to, ok := window.clip(from, to)
	if !ok {
		return Conflict{}, false
	}
	sort.Slice(idxs, func(i, j int) bool {
		return assignments[idxs[i]].TaskID < assignments[idxs[j]].TaskID
	})
	contrib := make([]model.ResourceAssignment, len(idxs))
	for i, idx := range idxs {
		contrib[i] = assignments[idx]
	}
	return Conflict{
		ResourceID:             resourceID,
		Start:                  from,
		End:                    to,
		TotalAllocationPercent: total,
		CapacityPercent:        capacity,
		Assignments:            contrib,
	}, true
}

// coalesce merges the new conflict into the previous one when they are
// adjacent with the same contributors and the same total allocation.
func coalesce(out []Conflict, c Conflict) []Conflict {
	if n := len(out); n > 0 {
		last := &out[n-1]
		if last.End.Equal(c.Start) &&
			math.Abs(last.TotalAllocationPercent-c.TotalAllocationPercent) <= allocEps &&
			sameContributors(last.Assignments, c.Assignments) {
			last.End = c.End
			return out
		}
	}
	return append(out, c)
}

func sameContributors(a, b []model.ResourceAssignment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].TaskID != b[i].TaskID || a[i].ResourceID != b[i].ResourceID {
			return false
		}
	}
	return true
}
