package scheduling

import (
	"time"

	"github.com/mreynaud/schedcore/core/compression"
	"github.com/mreynaud/schedcore/core/conflict"
	"github.com/mreynaud/schedcore/core/cpm"
	"github.com/mreynaud/schedcore/core/evm"
	"github.com/mreynaud/schedcore/core/leveling"
	"github.com/mreynaud/schedcore/core/model"
)

// CriticalPathReport carries the per-task timing detail and the critical
// path itself.
type CriticalPathReport struct {
	AnalysisID   string
	ProjectID    string
	DurationDays float64
	CriticalPath []string
	Tasks        []cpm.TaskTiming // ordered by earliest start
}

// ConflictReport lists resource over-allocation periods within the window.
type ConflictReport struct {
	AnalysisID string
	ProjectID  string
	Window     conflict.Window
	Conflicts  []conflict.Conflict
}

// EVMReport wraps the earned value snapshot.
type EVMReport struct {
	AnalysisID string
	ProjectID  string
	Snapshot   evm.Snapshot
}

// ScheduleStatus qualifies the SPI.
type ScheduleStatus string

const (
	ScheduleAhead      ScheduleStatus = "ahead of schedule"
	ScheduleOnTrack    ScheduleStatus = "on schedule"
	ScheduleBehind     ScheduleStatus = "behind schedule"
	ScheduleNotStarted ScheduleStatus = "not started"
)

// BudgetStatus qualifies the CPI.
type BudgetStatus string

const (
	BudgetUnder   BudgetStatus = "under budget"
	BudgetOnTrack BudgetStatus = "on budget"
	BudgetOver    BudgetStatus = "over budget"
	BudgetNoSpend BudgetStatus = "no spend recorded"
)

// VarianceReport combines the variances with qualitative statuses and a
// one-line narrative.
type VarianceReport struct {
	AnalysisID       string
	ProjectID        string
	AsOf             time.Time
	ScheduleVariance model.Money
	CostVariance     model.Money
	SPI              evm.Index
	CPI              evm.Index
	ScheduleStatus   ScheduleStatus
	BudgetStatus     BudgetStatus
	Narrative        string
}

// TCPIBasis names which denominator variant a TCPI report used.
type TCPIBasis string

const (
	TCPIBasisBAC TCPIBasis = "bac"
	TCPIBasisEAC TCPIBasis = "eac"
)

// TCPIReport carries the to-complete performance index with a qualitative
// achievability judgment.
type TCPIReport struct {
	AnalysisID     string
	ProjectID      string
	Basis          TCPIBasis
	Value          evm.Index
	Achievability  string
	Recommendation string
}

// LevelingReport wraps the leveling result together with the descriptive
// records of the profiled resources.
type LevelingReport struct {
	AnalysisID string
	ProjectID  string
	Result     leveling.Result
	Resources  []model.Resource
}

// CompressionReport wraps the compression result.
type CompressionReport struct {
	AnalysisID string
	ProjectID  string
	Result     compression.Result
}
