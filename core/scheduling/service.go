// Package scheduling orchestrates the analysis engines over data fetched
// from the project, schedule and resource collaborators. Every operation
// works on a snapshot loaded for that call; nothing is mutated or cached
// between invocations, so operations may run concurrently.
package scheduling

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mreynaud/schedcore/core/compression"
	"github.com/mreynaud/schedcore/core/conflict"
	"github.com/mreynaud/schedcore/core/cpm"
	"github.com/mreynaud/schedcore/core/events"
	"github.com/mreynaud/schedcore/core/evm"
	"github.com/mreynaud/schedcore/core/leveling"
	"github.com/mreynaud/schedcore/core/logger"
	"github.com/mreynaud/schedcore/core/model"
	"github.com/mreynaud/schedcore/internal/eventbus"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Service exposes the public analysis operations.
type Service struct {
	projects  ProjectLookup
	schedule  ScheduleLookup
	resources ResourceLookup
	leveler   *leveling.Leveler
	log       logger.Logger
	bus       eventbus.EventBus
	now       func() time.Time
}

// NewService wires the collaborators into a service. The bus may be nil
// when no subscriber cares about analysis events.
func NewService(projects ProjectLookup, schedule ScheduleLookup, resources ResourceLookup,
	levelCfg leveling.Config, log logger.Logger, bus eventbus.EventBus) (*Service, error) {
	if projects == nil || schedule == nil || resources == nil {
		return nil, fmt.Errorf("scheduling service requires all three lookups")
	}
	if log == nil {
		return nil, fmt.Errorf("scheduling service requires a logger")
	}
	return &Service{
		projects:  projects,
		schedule:  schedule,
		resources: resources,
		leveler:   leveling.NewLeveler(levelCfg),
		log:       log,
		bus:       bus,
		now:       time.Now,
	}, nil
}

// run tracks one operation: event publication, timing and outcome logging.
type run struct {
	svc       *Service
	id        string
	projectID string
	op        string
	started   time.Time
}

func (s *Service) begin(projectID, op string) *run {
	r := &run{svc: s, id: uuid.NewString(), projectID: projectID, op: op, started: s.now()}
	if s.bus != nil {
		s.bus.Publish(events.AnalysisStarted{AnalysisID: r.id, ProjectID: projectID, Operation: op, At: r.started})
	}
	return r
}

func (r *run) finish(err error) {
	elapsed := r.svc.now().Sub(r.started)
	if err != nil {
		r.svc.log.Warnf("%s failed for project %s (analysis %s): %v", r.op, r.projectID, r.id, err)
		if r.svc.bus != nil {
			r.svc.bus.Publish(events.AnalysisFailed{AnalysisID: r.id, ProjectID: r.projectID, Operation: r.op, Elapsed: elapsed, Err: err})
		}
		return
	}
	r.svc.log.Infof("%s completed for project %s (analysis %s) in %s", r.op, r.projectID, r.id, elapsed)
	if r.svc.bus != nil {
		r.svc.bus.Publish(events.AnalysisCompleted{AnalysisID: r.id, ProjectID: r.projectID, Operation: r.op, Elapsed: elapsed})
	}
}

func validateProjectID(id string) error {
	if !idPattern.MatchString(id) {
		return &model.ValidationError{Field: "project_id", Reason: fmt.Sprintf("identifier %q is malformed", id)}
	}
	return nil
}

// load fetches the project record and its task snapshot.
func (s *Service) load(ctx context.Context, projectID string) (model.Project, []model.Task, error) {
	if err := validateProjectID(projectID); err != nil {
		return model.Project{}, nil, err
	}
	project, err := s.projects.Project(ctx, projectID)
	if err != nil {
		return model.Project{}, nil, fmt.Errorf("resolve project %s: %w", projectID, err)
	}
	tasks, err := s.schedule.Tasks(ctx, projectID)
	if err != nil {
		return model.Project{}, nil, fmt.Errorf("load tasks for %s: %w", projectID, err)
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return model.Project{}, nil, err
		}
	}
	return project, tasks, nil
}

// span resolves the planned project window, falling back to the task dates
// when the project record carries none.
func span(project model.Project, tasks []model.Task) (time.Time, time.Time, error) {
	start, finish := project.Start, project.Finish
	if start.IsZero() || finish.IsZero() {
		for _, t := range tasks {
			if !t.PlannedStart.IsZero() && (start.IsZero() || t.PlannedStart.Before(start)) {
				start = t.PlannedStart
			}
			if !t.PlannedFinish.IsZero() && (finish.IsZero() || t.PlannedFinish.After(finish)) {
				finish = t.PlannedFinish
			}
		}
	}
	if start.IsZero() || finish.IsZero() || !finish.After(start) {
		return time.Time{}, time.Time{}, &model.ValidationError{Field: "planned_dates", Reason: "project has no usable planned start/finish window"}
	}
	return start, finish, nil
}

// capacities resolves the capacity of every resource assigned in the tasks.
func (s *Service) capacities(ctx context.Context, tasks []model.Task) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, t := range tasks {
		for _, a := range t.Assignments {
			if _, ok := out[a.ResourceID]; ok {
				continue
			}
			c, err := s.resources.Capacity(ctx, a.ResourceID)
			if err != nil {
				return nil, fmt.Errorf("resolve capacity of %s: %w", a.ResourceID, err)
			}
			out[a.ResourceID] = c.Limit()
		}
	}
	return out, nil
}

// EarnedValueSnapshot computes the EVM picture of a project as of the
// given instant, defaulting to now. Projects without tasks or with mixed
// currencies are rejected.
func (s *Service) EarnedValueSnapshot(ctx context.Context, projectID string, asOf *time.Time) (rep *EVMReport, err error) {
	r := s.begin(projectID, "earned_value")
	defer func() { r.finish(err) }()

	project, tasks, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(project, tasks, asOf)
	if err != nil {
		return nil, err
	}
	return &EVMReport{AnalysisID: r.id, ProjectID: projectID, Snapshot: *snapshot}, nil
}

// snapshot computes BAC once and derives the full EVM snapshot from it.
func (s *Service) snapshot(project model.Project, tasks []model.Task, asOf *time.Time) (*evm.Snapshot, error) {
	if len(tasks) == 0 {
		return nil, model.ErrNoTasks
	}
	bac, err := evm.BudgetAtCompletion(tasks)
	if err != nil {
		return nil, err
	}
	start, finish, err := span(project, tasks)
	if err != nil {
		return nil, err
	}
	at := s.now()
	if asOf != nil {
		at = *asOf
	}
	return evm.Compute(tasks, bac, start, finish, at)
}

// DetectResourceConflicts sweeps the project's assignments within the
// window. A project without tasks yields an empty report, not a failure.
func (s *Service) DetectResourceConflicts(ctx context.Context, projectID string, window conflict.Window) (rep *ConflictReport, err error) {
	r := s.begin(projectID, "resource_conflicts")
	defer func() { r.finish(err) }()

	_, tasks, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	rep = &ConflictReport{AnalysisID: r.id, ProjectID: projectID, Window: window}
	if len(tasks) == 0 {
		return rep, nil
	}
	caps, err := s.capacities(ctx, tasks)
	if err != nil {
		return nil, err
	}
	var assignments []model.ResourceAssignment
	for _, t := range tasks {
		assignments = append(assignments, t.Assignments...)
	}
	rep.Conflicts = conflict.Detect(assignments, caps, window)
	return rep, nil
}

// VarianceAnalysis reduces the EVM snapshot to SV/CV/SPI/CPI with
// qualitative schedule and budget statuses.
func (s *Service) VarianceAnalysis(ctx context.Context, projectID string, asOf *time.Time) (rep *VarianceReport, err error) {
	r := s.begin(projectID, "variance_analysis")
	defer func() { r.finish(err) }()

	project, tasks, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(project, tasks, asOf)
	if err != nil {
		return nil, err
	}
	ss := scheduleStatus(snapshot.SchedulePerformanceIndex)
	bs := budgetStatus(snapshot.CostPerformanceIndex)
	return &VarianceReport{
		AnalysisID:       r.id,
		ProjectID:        projectID,
		AsOf:             snapshot.AsOf,
		ScheduleVariance: snapshot.ScheduleVariance,
		CostVariance:     snapshot.CostVariance,
		SPI:              snapshot.SchedulePerformanceIndex,
		CPI:              snapshot.CostPerformanceIndex,
		ScheduleStatus:   ss,
		BudgetStatus:     bs,
		Narrative:        narrative(ss, bs, snapshot.SchedulePerformanceIndex, snapshot.CostPerformanceIndex),
	}, nil
}

// ToCompletePerformance computes the TCPI, optionally against the EAC
// forecast instead of the baseline budget.
func (s *Service) ToCompletePerformance(ctx context.Context, projectID string, useEAC bool) (rep *TCPIReport, err error) {
	r := s.begin(projectID, "tcpi")
	defer func() { r.finish(err) }()

	project, tasks, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(project, tasks, nil)
	if err != nil {
		return nil, err
	}

	basis := TCPIBasisBAC
	idx := snapshot.ToCompleteIndex
	if useEAC {
		basis = TCPIBasisEAC
		idx = evm.Undefined
		if eac := snapshot.EstimateAtCompletion; eac.Valid {
			idx = evm.ToCompleteEAC(snapshot.BudgetAtCompletion.Amount, snapshot.EarnedValue.Amount, snapshot.ActualCost.Amount, eac.Value)
		}
	}
	achievability, recommendation := tcpiJudgment(idx)
	return &TCPIReport{
		AnalysisID:     r.id,
		ProjectID:      projectID,
		Basis:          basis,
		Value:          idx,
		Achievability:  achievability,
		Recommendation: recommendation,
	}, nil
}

// CriticalPath runs the forward/backward pass and returns the per-task
// timing detail ordered by earliest start.
func (s *Service) CriticalPath(ctx context.Context, projectID string) (rep *CriticalPathReport, err error) {
	r := s.begin(projectID, "critical_path")
	defer func() { r.finish(err) }()

	_, tasks, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, model.ErrNoTasks
	}
	res, err := cpm.Analyze(tasks)
	if err != nil {
		return nil, err
	}
	detail := make([]cpm.TaskTiming, 0, len(res.Timings))
	for _, tm := range res.Timings {
		detail = append(detail, *tm)
	}
	sort.Slice(detail, func(i, j int) bool {
		if detail[i].EarliestStart != detail[j].EarliestStart {
			return detail[i].EarliestStart < detail[j].EarliestStart
		}
		return detail[i].TaskID < detail[j].TaskID
	})
	return &CriticalPathReport{
		AnalysisID:   r.id,
		ProjectID:    projectID,
		DurationDays: res.DurationDays,
		CriticalPath: res.CriticalPath,
		Tasks:        detail,
	}, nil
}

// LevelResources builds the allocation profiles and proposes delays for
// over-allocated resources, reporting the schedule tradeoff.
func (s *Service) LevelResources(ctx context.Context, projectID string) (rep *LevelingReport, err error) {
	r := s.begin(projectID, "resource_leveling")
	defer func() { r.finish(err) }()

	_, tasks, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, model.ErrNoTasks
	}
	res, err := cpm.Analyze(tasks)
	if err != nil {
		return nil, err
	}
	caps, err := s.capacities(ctx, tasks)
	if err != nil {
		return nil, err
	}
	result := s.leveler.Level(tasks, caps, res.DurationDays)

	records, err := s.resources.Resources(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list resources for %s: %w", projectID, err)
	}
	profiled := make(map[string]bool, len(result.Profiles))
	for _, p := range result.Profiles {
		profiled[p.ResourceID] = true
	}
	var detail []model.Resource
	for _, rec := range records {
		if profiled[rec.ID] {
			detail = append(detail, rec)
		}
	}
	return &LevelingReport{AnalysisID: r.id, ProjectID: projectID, Result: *result, Resources: detail}, nil
}

// CompressSchedule selects crashing and fast-tracking actions toward the
// target reduction, honoring the optional cost and risk caps.
func (s *Service) CompressSchedule(ctx context.Context, projectID string, req compression.Request) (rep *CompressionReport, err error) {
	r := s.begin(projectID, "schedule_compression")
	defer func() { r.finish(err) }()

	_, tasks, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, model.ErrNoTasks
	}
	res, err := cpm.Analyze(tasks)
	if err != nil {
		return nil, err
	}
	result, err := compression.Compress(tasks, res.CriticalPath, res.DurationDays, req)
	if err != nil {
		return nil, err
	}
	return &CompressionReport{AnalysisID: r.id, ProjectID: projectID, Result: *result}, nil
}
