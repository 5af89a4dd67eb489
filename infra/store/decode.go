package store

import (
	"fmt"
	"time"

	"github.com/mreynaud/schedcore/core/model"
)

// The document structs mirror the project file layout. Dates are RFC 3339
// strings and converted explicitly so a malformed record names the task it
// belongs to.

type projectDoc struct {
	Project   projectRec    `json:"project"`
	Tasks     []taskRec     `json:"tasks"`
	Resources []resourceRec `json:"resources"`
}

type projectRec struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Start  string `json:"start"`
	Finish string `json:"finish"`
}

type moneyRec struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type taskRec struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	DurationDays    float64         `json:"duration_days"`
	PlannedStart    string          `json:"planned_start"`
	PlannedFinish   string          `json:"planned_finish"`
	PercentComplete float64         `json:"percent_complete"`
	BaselineCost    moneyRec        `json:"baseline_cost"`
	ActualCost      *moneyRec       `json:"actual_cost"`
	ActualHours     *float64        `json:"actual_hours"`
	BaselineHours   *float64        `json:"baseline_hours"`
	Dependencies    []dependencyRec `json:"dependencies"`
	Assignments     []assignmentRec `json:"assignments"`
	Crash           *crashRec       `json:"crash"`
	FastTrack       *fastTrackRec   `json:"fast_track"`
}

type dependencyRec struct {
	Predecessor string  `json:"predecessor"`
	Type        string  `json:"type"`
	LagDays     float64 `json:"lag_days"`
}

type assignmentRec struct {
	Resource          string  `json:"resource"`
	AllocationPercent float64 `json:"allocation_percent"`
	Start             string  `json:"start"`
	Finish            string  `json:"finish"`
}

type crashRec struct {
	CrashedDurationDays float64  `json:"crashed_duration_days"`
	CrashedCost         moneyRec `json:"crashed_cost"`
}

type fastTrackRec struct {
	Successor       string  `json:"successor"`
	OriginalLagDays float64 `json:"original_lag_days"`
	ProposedLagDays float64 `json:"proposed_lag_days"`
	Risk            string  `json:"risk"`
	ReworkProb      float64 `json:"rework_probability"`
}

func fromDoc(doc projectDoc) (*Store, error) {
	if doc.Project.ID == "" {
		return nil, fmt.Errorf("project file carries no project id")
	}
	project := model.Project{ID: doc.Project.ID, Name: doc.Project.Name}
	var err error
	if project.Start, err = parseDate(doc.Project.Start, "project start"); err != nil {
		return nil, err
	}
	if project.Finish, err = parseDate(doc.Project.Finish, "project finish"); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(doc.Tasks))
	for _, rec := range doc.Tasks {
		t, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	resources := make([]model.Resource, 0, len(doc.Resources))
	capacities := make([]model.ResourceCapacity, 0, len(doc.Resources))
	for _, rec := range doc.Resources {
		resources = append(resources, model.Resource{
			ID:          rec.ID,
			Name:        rec.Name,
			Type:        rec.Type,
			MaxUnits:    rec.MaxUnits,
			CostPerUnit: model.Money{Amount: rec.CostPerUnit.Amount, Currency: rec.CostPerUnit.Currency},
		})
		capacities = append(capacities, model.ResourceCapacity{ResourceID: rec.ID, MaxPercent: rec.MaxPercent})
	}
	return NewStatic(project, tasks, resources, capacities), nil
}

type resourceRec struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	MaxUnits    float64  `json:"max_units"`
	CostPerUnit moneyRec `json:"cost_per_unit"`
	MaxPercent  float64  `json:"max_percent"`
}

func (rec taskRec) toModel() (model.Task, error) {
	t := model.Task{
		ID:              rec.ID,
		Name:            rec.Name,
		DurationDays:    rec.DurationDays,
		PercentComplete: rec.PercentComplete,
		BaselineCost:    model.Money{Amount: rec.BaselineCost.Amount, Currency: rec.BaselineCost.Currency},
		ActualHours:     rec.ActualHours,
		BaselineHours:   rec.BaselineHours,
	}
	var err error
	if t.PlannedStart, err = parseDate(rec.PlannedStart, "task "+rec.ID+" planned start"); err != nil {
		return model.Task{}, err
	}
	if t.PlannedFinish, err = parseDate(rec.PlannedFinish, "task "+rec.ID+" planned finish"); err != nil {
		return model.Task{}, err
	}
	if rec.ActualCost != nil {
		t.ActualCost = &model.Money{Amount: rec.ActualCost.Amount, Currency: rec.ActualCost.Currency}
	}
	for _, d := range rec.Dependencies {
		depType, err := parseDependencyType(d.Type)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s: %w", rec.ID, err)
		}
		t.Dependencies = append(t.Dependencies, model.Dependency{
			PredecessorID: d.Predecessor,
			Type:          depType,
			LagDays:       d.LagDays,
		})
	}
	for _, a := range rec.Assignments {
		assignment := model.ResourceAssignment{
			ResourceID:        a.Resource,
			TaskID:            rec.ID,
			AllocationPercent: a.AllocationPercent,
		}
		if assignment.Start, err = parseDate(a.Start, "task "+rec.ID+" assignment start"); err != nil {
			return model.Task{}, err
		}
		if assignment.Finish, err = parseDate(a.Finish, "task "+rec.ID+" assignment finish"); err != nil {
			return model.Task{}, err
		}
		t.Assignments = append(t.Assignments, assignment)
	}
	if rec.Crash != nil {
		t.Crash = &model.CrashData{
			CrashedDurationDays: rec.Crash.CrashedDurationDays,
			CrashedCost:         model.Money{Amount: rec.Crash.CrashedCost.Amount, Currency: rec.Crash.CrashedCost.Currency},
		}
	}
	if rec.FastTrack != nil {
		risk, err := parseRiskLevel(rec.FastTrack.Risk)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %s: %w", rec.ID, err)
		}
		t.FastTrack = &model.FastTrackData{
			SuccessorID:     rec.FastTrack.Successor,
			OriginalLagDays: rec.FastTrack.OriginalLagDays,
			ProposedLagDays: rec.FastTrack.ProposedLagDays,
			Risk:            risk,
			ReworkProb:      rec.FastTrack.ReworkProb,
		}
	}
	return t, nil
}

// parseDate accepts RFC 3339 instants and plain dates. Empty strings stay
// zero; optional fields rely on that.
func parseDate(s, what string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s: cannot parse date %q", what, s)
}

func parseDependencyType(s string) (model.DependencyType, error) {
	switch s {
	case "", "FS", "fs":
		return model.FinishToStart, nil
	case "SS", "ss":
		return model.StartToStart, nil
	case "FF", "ff":
		return model.FinishToFinish, nil
	case "SF", "sf":
		return model.StartToFinish, nil
	default:
		return 0, fmt.Errorf("unknown dependency type %q", s)
	}
}

func parseRiskLevel(s string) (model.RiskLevel, error) {
	switch s {
	case "", "low":
		return model.RiskLow, nil
	case "moderate", "medium":
		return model.RiskModerate, nil
	case "high":
		return model.RiskHigh, nil
	case "extreme":
		return model.RiskExtreme, nil
	default:
		return 0, fmt.Errorf("unknown risk level %q", s)
	}
}
