package model

import (
	"fmt"
	"time"
)

// DependencyType tags the timing relationship between a predecessor and a
// successor task.
type DependencyType int

const (
	FinishToStart DependencyType = iota
	StartToStart
	FinishToFinish
	StartToFinish
)

// String returns a human-readable representation of the dependency type.
func (t DependencyType) String() string {
	switch t {
	case FinishToStart:
		return "FS"
	case StartToStart:
		return "SS"
	case FinishToFinish:
		return "FF"
	case StartToFinish:
		return "SF"
	default:
		return "unknown"
	}
}

// Dependency links a task to one of its predecessors. Only finish-to-start
// timing is incorporated into the critical-path math; other types are carried
// through and reported so callers can see the approximation.
type Dependency struct {
	PredecessorID string
	Type          DependencyType
	LagDays       float64 // positive lag delays the successor, negative overlaps
}

// RiskLevel qualifies the rework exposure of a fast-tracking action.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskModerate
	RiskHigh
	RiskExtreme
)

// String returns a human-readable representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskModerate:
		return "moderate"
	case RiskHigh:
		return "high"
	case RiskExtreme:
		return "extreme"
	default:
		return "unknown"
	}
}

// CrashData describes the accelerated execution option for a task.
type CrashData struct {
	CrashedDurationDays float64 // shortened duration, must be < normal duration
	CrashedCost         Money   // total cost when crashed, same currency as baseline
}

// FastTrackData describes the overlap option between a task and its
// designated successor.
type FastTrackData struct {
	SuccessorID     string
	OriginalLagDays float64 // current gap between the pair
	ProposedLagDays float64 // proposed gap, smaller than original
	Risk            RiskLevel
	ReworkProb      float64 // probability in [0,1] that overlap forces rework
}

// Task is an immutable snapshot of one schedule activity. The engine never
// mutates tasks; each analysis works on a fresh copy fetched from the
// schedule collaborator.
type Task struct {
	ID              string
	Name            string
	DurationDays    float64
	PlannedStart    time.Time
	PlannedFinish   time.Time
	PercentComplete float64 // 0-100
	BaselineCost    Money
	ActualCost      *Money   // explicit actuals when the cost system has them
	ActualHours     *float64 // labor hours booked so far
	BaselineHours   *float64 // labor hours planned in the baseline
	Dependencies    []Dependency
	Assignments     []ResourceAssignment
	Crash           *CrashData
	FastTrack       *FastTrackData
}

// PredecessorIDs returns the identifiers of all predecessors regardless of
// dependency type.
func (t Task) PredecessorIDs() []string {
	ids := make([]string, 0, len(t.Dependencies))
	for _, d := range t.Dependencies {
		ids = append(ids, d.PredecessorID)
	}
	return ids
}

// Validate checks structural soundness of the task snapshot.
func (t Task) Validate() error {
	if t.ID == "" {
		return &ValidationError{Field: "id", Reason: "task identifier is empty"}
	}
	if t.DurationDays < 0 {
		return &ValidationError{Field: "duration", Reason: fmt.Sprintf("task %s has negative duration", t.ID)}
	}
	if t.PercentComplete < 0 || t.PercentComplete > 100 {
		return &ValidationError{Field: "percent_complete", Reason: fmt.Sprintf("task %s percent complete %.1f outside [0,100]", t.ID, t.PercentComplete)}
	}
	for _, a := range t.Assignments {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	if t.Crash != nil && t.Crash.CrashedDurationDays >= t.DurationDays {
		return &ValidationError{Field: "crash", Reason: fmt.Sprintf("task %s crashed duration must be below normal duration", t.ID)}
	}
	if ft := t.FastTrack; ft != nil {
		if ft.ReworkProb < 0 || ft.ReworkProb > 1 {
			return &ValidationError{Field: "fast_track", Reason: fmt.Sprintf("task %s rework probability outside [0,1]", t.ID)}
		}
	}
	return nil
}
