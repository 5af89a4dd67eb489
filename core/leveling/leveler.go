// Package leveling builds day-granularity resource allocation profiles and
// proposes task delays to resolve over-allocation. The delay selection is a
// greedy heuristic: it resolves the worst offender periods first and makes
// no claim of minimal total delay.
package leveling

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mreynaud/schedcore/core/model"
)

const allocEps = 1e-9

// Config tunes the leveling heuristic.
type Config struct {
	// MaxOffenderPeriods bounds how many over-allocation periods are
	// attacked, worst peak first, keeping the pass linear in practice.
	MaxOffenderPeriods int `json:"max_offender_periods"`
	// MaxDelayedTasksPerPeriod bounds how many contributing tasks a single
	// period may delay.
	MaxDelayedTasksPerPeriod int `json:"max_delayed_tasks_per_period"`
	// AcceptableExtensionPercent is the schedule extension above which the
	// recommendation flips to reject.
	AcceptableExtensionPercent float64 `json:"acceptable_extension_percent"`
}

// SetDefaults fills unset fields with the stock heuristic parameters.
func (c *Config) SetDefaults() {
	if c.MaxOffenderPeriods <= 0 {
		c.MaxOffenderPeriods = 5
	}
	if c.MaxDelayedTasksPerPeriod <= 0 {
		c.MaxDelayedTasksPerPeriod = 2
	}
	if c.AcceptableExtensionPercent <= 0 {
		c.AcceptableExtensionPercent = 20
	}
}

// DelayedTask records one proposed delay.
type DelayedTask struct {
	TaskID    string
	DelayDays float64
	Reason    string
}

// Result is the outcome of one leveling pass.
type Result struct {
	OriginalDurationDays float64
	LeveledDurationDays  float64
	ExtensionPercent     float64
	Delays               []DelayedTask
	Profiles             []ResourceProfile
	Accepted             bool
	Recommendation       string
}

// Leveler proposes delays over a task snapshot. The zero value is unusable;
// construct with NewLeveler.
type Leveler struct {
	cfg Config
}

// NewLeveler returns a leveler with the given configuration, defaults
// applied.
func NewLeveler(cfg Config) *Leveler {
	cfg.SetDefaults()
	return &Leveler{cfg: cfg}
}

// Level builds the allocation profiles, proposes delays for the worst
// over-allocation periods and reports the schedule tradeoff.
// originalDuration is the pre-leveling project duration in days.
func (l *Leveler) Level(tasks []model.Task, capacities map[string]float64, originalDuration float64) *Result {
	assignments := collectAssignments(tasks)
	res := &Result{
		OriginalDurationDays: originalDuration,
		LeveledDurationDays:  originalDuration,
	}

	profiles := buildProfiles(assignments, capacities)
	var periods []OverAllocationPeriod
	for _, p := range profiles {
		periods = append(periods, overAllocationPeriods(p)...)
	}
	// Worst peak overallocation first; period start then resource as
	// tie-breaks keep the selection deterministic.
	sort.SliceStable(periods, func(i, j int) bool {
		oi := periods[i].PeakPercent - periods[i].CapacityPercent
		oj := periods[j].PeakPercent - periods[j].CapacityPercent
		if oi != oj {
			return oi > oj
		}
		if !periods[i].Start.Equal(periods[j].Start) {
			return periods[i].Start.Before(periods[j].Start)
		}
		return periods[i].ResourceID < periods[j].ResourceID
	})
	if len(periods) > l.cfg.MaxOffenderPeriods {
		periods = periods[:l.cfg.MaxOffenderPeriods]
	}

	delayed := make(map[string]float64)
	for _, period := range periods {
		for _, d := range l.proposeDelays(period, delayed) {
			delayed[d.TaskID] = d.DelayDays
			res.Delays = append(res.Delays, d)
			res.LeveledDurationDays += d.DelayDays
		}
	}

	// Re-profile with the delays applied to judge whether the schedule is
	// level now.
	res.Profiles = buildProfiles(shiftAssignments(assignments, delayed), capacities)

	if originalDuration > 0 {
		res.ExtensionPercent = (res.LeveledDurationDays - originalDuration) / originalDuration * 100
	}
	res.Accepted = res.ExtensionPercent <= l.cfg.AcceptableExtensionPercent
	if len(res.Delays) == 0 {
		res.Recommendation = "no over-allocation detected; schedule is already level"
	} else if res.Accepted {
		res.Recommendation = fmt.Sprintf("accept: %d task delay(s) extend the schedule by %.1f%%, within the %.1f%% threshold",
			len(res.Delays), res.ExtensionPercent, l.cfg.AcceptableExtensionPercent)
	} else {
		res.Recommendation = fmt.Sprintf("reject: %d task delay(s) extend the schedule by %.1f%%, above the %.1f%% threshold; consider adding capacity instead",
			len(res.Delays), res.ExtensionPercent, l.cfg.AcceptableExtensionPercent)
	}
	return res
}

// proposeDelays keeps the first contributing task anchored and delays up to
// MaxDelayedTasksPerPeriod of the others, proportionally to the peak
// overallocation. The k-th delayed task gets k times the base delay so the
// shifted tasks do not collide with each other again. Tasks already delayed
// by an earlier (worse) period are skipped.
func (l *Leveler) proposeDelays(period OverAllocationPeriod, already map[string]float64) []DelayedTask {
	overRatio := (period.PeakPercent - period.CapacityPercent) / period.CapacityPercent
	periodDays := period.End.Sub(period.Start).Hours() / 24
	base := math.Ceil(overRatio * periodDays)
	if base < 1 {
		base = 1
	}

	var out []DelayedTask
	for i, taskID := range period.TaskIDs {
		if i == 0 {
			continue // anchor the first contributor
		}
		if len(out) >= l.cfg.MaxDelayedTasksPerPeriod {
			break
		}
		if _, ok := already[taskID]; ok {
			continue
		}
		out = append(out, DelayedTask{
			TaskID:    taskID,
			DelayDays: base * float64(len(out)+1),
			Reason: fmt.Sprintf("resource %s over-allocated at %.0f%% of %.0f%% capacity from %s",
				period.ResourceID, period.PeakPercent, period.CapacityPercent, period.Start.Format("2006-01-02")),
		})
	}
	return out
}

func collectAssignments(tasks []model.Task) []model.ResourceAssignment {
	var out []model.ResourceAssignment
	for _, t := range tasks {
		out = append(out, t.Assignments...)
	}
	return out
}

// shiftAssignments returns a copy of the assignments with the delayed
// tasks' intervals pushed back by their delay.
func shiftAssignments(assignments []model.ResourceAssignment, delays map[string]float64) []model.ResourceAssignment {
	out := make([]model.ResourceAssignment, len(assignments))
	for i, a := range assignments {
		if d, ok := delays[a.TaskID]; ok {
			shift := time.Duration(d * 24 * float64(time.Hour))
			a.Start = a.Start.Add(shift)
			a.Finish = a.Finish.Add(shift)
		}
		out[i] = a
	}
	return out
}
