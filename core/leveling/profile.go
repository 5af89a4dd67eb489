package leveling

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/mreynaud/schedcore/core/model"
)

// DayAllocation is the summed allocation of one resource on one day.
type DayAllocation struct {
	Day     time.Time
	Percent float64
	TaskIDs []string
}

// ResourceProfile is the day-granularity allocation series for one resource.
type ResourceProfile struct {
	ResourceID      string
	CapacityPercent float64
	Days            []DayAllocation
	PeakPercent     float64
	// Smoothness is the coefficient of variation of the daily allocation:
	// standard deviation over mean. Lower is smoother.
	Smoothness float64
	Level      bool // no day exceeds capacity
}

// OverAllocationPeriod is a run of consecutive days above capacity.
type OverAllocationPeriod struct {
	ResourceID      string
	Start           time.Time // first over-allocated day
	End             time.Time // day after the last over-allocated day
	PeakPercent     float64
	CapacityPercent float64
	TaskIDs         []string // all tasks contributing during the period
}

// dayFloor truncates an instant to the start of its UTC day.
func dayFloor(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// dayCeil rounds an instant up to the next UTC day boundary.
func dayCeil(t time.Time) time.Time {
	f := dayFloor(t)
	if f.Equal(t.UTC()) {
		return f
	}
	return f.AddDate(0, 0, 1)
}

// buildProfiles sums assignment allocations per resource per day across the
// combined assignment span.
func buildProfiles(assignments []model.ResourceAssignment, capacities map[string]float64) []ResourceProfile {
	byResource := make(map[string][]model.ResourceAssignment)
	for _, a := range assignments {
		if !a.Start.Before(a.Finish) {
			continue
		}
		byResource[a.ResourceID] = append(byResource[a.ResourceID], a)
	}
	ids := make([]string, 0, len(byResource))
	for id := range byResource {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	profiles := make([]ResourceProfile, 0, len(ids))
	for _, id := range ids {
		capacity := model.DefaultCapacityPercent
		if c, ok := capacities[id]; ok && c > 0 {
			capacity = c
		}
		profiles = append(profiles, buildProfile(id, byResource[id], capacity))
	}
	return profiles
}

func buildProfile(resourceID string, assignments []model.ResourceAssignment, capacity float64) ResourceProfile {
	span0 := dayFloor(assignments[0].Start)
	span1 := dayCeil(assignments[0].Finish)
	for _, a := range assignments[1:] {
		if d := dayFloor(a.Start); d.Before(span0) {
			span0 = d
		}
		if d := dayCeil(a.Finish); d.After(span1) {
			span1 = d
		}
	}

	p := ResourceProfile{ResourceID: resourceID, CapacityPercent: capacity, Level: true}
	values := make([]float64, 0, int(span1.Sub(span0).Hours()/24))
	for day := span0; day.Before(span1); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)
		alloc := DayAllocation{Day: day}
		for _, a := range assignments {
			if a.Start.Before(next) && a.Finish.After(day) {
				alloc.Percent += a.AllocationPercent
				alloc.TaskIDs = append(alloc.TaskIDs, a.TaskID)
			}
		}
		sort.Strings(alloc.TaskIDs)
		p.Days = append(p.Days, alloc)
		values = append(values, alloc.Percent)
		if alloc.Percent > p.PeakPercent {
			p.PeakPercent = alloc.Percent
		}
		if alloc.Percent > capacity+allocEps {
			p.Level = false
		}
	}
	if mean := stat.Mean(values, nil); mean > 0 {
		p.Smoothness = stat.StdDev(values, nil) / mean
	}
	return p
}

// overAllocationPeriods scans a profile for runs of days above capacity,
// keeping the peak magnitude and the contributing tasks per run.
func overAllocationPeriods(p ResourceProfile) []OverAllocationPeriod {
	var periods []OverAllocationPeriod
	var cur *OverAllocationPeriod
	taskSet := make(map[string]struct{})
	flush := func() {
		if cur == nil {
			return
		}
		ids := make([]string, 0, len(taskSet))
		for id := range taskSet {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		cur.TaskIDs = ids
		periods = append(periods, *cur)
		cur = nil
		taskSet = make(map[string]struct{})
	}
	for _, d := range p.Days {
		if d.Percent <= p.CapacityPercent+allocEps {
			flush()
			continue
		}
		if cur == nil {
			cur = &OverAllocationPeriod{
				ResourceID:      p.ResourceID,
				Start:           d.Day,
				CapacityPercent: p.CapacityPercent,
			}
		}
		cur.End = d.Day.AddDate(0, 0, 1)
		if d.Percent > cur.PeakPercent {
			cur.PeakPercent = d.Percent
		}
		for _, id := range d.TaskIDs {
			taskSet[id] = struct{}{}
		}
	}
	flush()
	return periods
}
