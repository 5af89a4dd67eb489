package scheduling

import (
	"strings"
	"testing"

	"github.com/mreynaud/schedcore/core/evm"
)

func TestScheduleStatusBands(t *testing.T) {
	cases := []struct {
		spi  evm.Index
		want ScheduleStatus
	}{
		{evm.Undefined, ScheduleNotStarted},
		{evm.Defined(1.10), ScheduleAhead},
		{evm.Defined(1.05), ScheduleAhead},
		{evm.Defined(1.00), ScheduleOnTrack},
		{evm.Defined(0.95), ScheduleOnTrack},
		{evm.Defined(0.80), ScheduleBehind},
	}
	for _, c := range cases {
		if got := scheduleStatus(c.spi); got != c.want {
			t.Errorf("scheduleStatus(%+v) = %s want %s", c.spi, got, c.want)
		}
	}
}

func TestBudgetStatusBands(t *testing.T) {
	cases := []struct {
		cpi  evm.Index
		want BudgetStatus
	}{
		{evm.Undefined, BudgetNoSpend},
		{evm.Defined(1.20), BudgetUnder},
		{evm.Defined(1.00), BudgetOnTrack},
		{evm.Defined(0.64), BudgetOver},
	}
	for _, c := range cases {
		if got := budgetStatus(c.cpi); got != c.want {
			t.Errorf("budgetStatus(%+v) = %s want %s", c.cpi, got, c.want)
		}
	}
}

func TestTCPIJudgmentBands(t *testing.T) {
	cases := []struct {
		idx  evm.Index
		want string
	}{
		{evm.Undefined, "not computable"},
		{evm.Defined(0.90), "achievable"},
		{evm.Defined(1.00), "achievable"},
		{evm.Defined(1.08), "challenging"},
		{evm.Defined(1.20), "difficult"},
		{evm.Defined(1.50), "unrealistic"},
		{evm.Defined(-3.00), "unrealistic"},
	}
	for _, c := range cases {
		if got, _ := tcpiJudgment(c.idx); got != c.want {
			t.Errorf("tcpiJudgment(%+v) = %s want %s", c.idx, got, c.want)
		}
	}
}

func TestTCPIJudgment_OverSpentRecommendsRebaseline(t *testing.T) {
	// A project that already spent past BAC carries a negative index; the
	// recommendation must point at the budget, not at efficiency targets.
	_, rec := tcpiJudgment(evm.Defined(-3))
	if !strings.Contains(rec, "re-baseline") {
		t.Fatalf("expected re-baseline recommendation got %q", rec)
	}
}
