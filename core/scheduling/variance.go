package scheduling

import (
	"fmt"

	"github.com/mreynaud/schedcore/core/evm"
)

// SPI/CPI bands for the qualitative statuses. A five percent corridor
// around 1.0 counts as on track.
const (
	indexAheadBand  = 1.05
	indexOnTrackLow = 0.95
)

func scheduleStatus(spi evm.Index) ScheduleStatus {
	switch {
	case !spi.Valid:
		return ScheduleNotStarted
	case spi.Value >= indexAheadBand:
		return ScheduleAhead
	case spi.Value >= indexOnTrackLow:
		return ScheduleOnTrack
	default:
		return ScheduleBehind
	}
}

func budgetStatus(cpi evm.Index) BudgetStatus {
	switch {
	case !cpi.Valid:
		return BudgetNoSpend
	case cpi.Value >= indexAheadBand:
		return BudgetUnder
	case cpi.Value >= indexOnTrackLow:
		return BudgetOnTrack
	default:
		return BudgetOver
	}
}

// narrative folds both statuses into one sentence for report surfaces that
// show a single line.
func narrative(s ScheduleStatus, b BudgetStatus, spi, cpi evm.Index) string {
	if !spi.Valid && !cpi.Valid {
		return "no planned or actual spend yet; performance cannot be assessed"
	}
	out := fmt.Sprintf("project is %s and %s", s, b)
	if spi.Valid && cpi.Valid {
		out += fmt.Sprintf(" (SPI %.2f, CPI %.2f)", spi.Value, cpi.Value)
	}
	return out
}

// tcpiJudgment maps the TCPI magnitude onto an achievability band and a
// textual recommendation.
func tcpiJudgment(idx evm.Index) (string, string) {
	if !idx.Valid {
		return "not computable",
			"remaining budget is exactly exhausted; re-baseline before setting efficiency targets"
	}
	switch v := idx.Value; {
	case v < 0:
		return "unrealistic",
			"spend already exceeds the budget baseline, so no remaining efficiency can recover it; re-baseline the budget"
	case v <= 1.0:
		return "achievable",
			fmt.Sprintf("remaining work can proceed at %.2fx baseline efficiency; current plan holds", v)
	case v <= 1.1:
		return "challenging",
			fmt.Sprintf("remaining work must run at %.2fx baseline efficiency; tighten scope or monitor weekly", v)
	case v <= 1.2:
		return "difficult",
			fmt.Sprintf("remaining work must run at %.2fx baseline efficiency; recover scope or cost now", v)
	default:
		return "unrealistic",
			fmt.Sprintf("required efficiency %.2fx is beyond sustainable recovery; re-baseline the budget", v)
	}
}
