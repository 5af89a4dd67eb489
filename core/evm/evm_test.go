package evm

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mreynaud/schedcore/core/model"
)

var (
	start  = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	finish = start.AddDate(0, 0, 30)
)

func usd(amount float64) model.Money { return model.Money{Amount: amount, Currency: "USD"} }

func TestSnapshot_MidProject(t *testing.T) {
	// 100k spread over 30 days, 40% complete at the halfway mark.
	tasks := []model.Task{
		{ID: "t1", BaselineCost: usd(60000), PercentComplete: 40},
		{ID: "t2", BaselineCost: usd(40000), PercentComplete: 40},
	}
	bac, err := BudgetAtCompletion(tasks)
	if err != nil {
		t.Fatalf("bac: %v", err)
	}
	if bac.Amount != 100000 {
		t.Fatalf("expected BAC 100000 got %v", bac.Amount)
	}
	asOf := start.AddDate(0, 0, 15)
	s, err := Compute(tasks, bac, start, finish, asOf)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if s.PlannedValue.Amount != 50000 {
		t.Errorf("expected PV 50000 got %v", s.PlannedValue.Amount)
	}
	if s.EarnedValue.Amount != 40000 {
		t.Errorf("expected EV 40000 got %v", s.EarnedValue.Amount)
	}
	if s.ScheduleVariance.Amount != -10000 {
		t.Errorf("expected SV -10000 got %v", s.ScheduleVariance.Amount)
	}
	if !s.SchedulePerformanceIndex.Valid || math.Abs(s.SchedulePerformanceIndex.Value-0.8) > 1e-9 {
		t.Errorf("expected SPI 0.8 got %+v", s.SchedulePerformanceIndex)
	}
}

func TestPlannedValue_Bounds(t *testing.T) {
	bac := usd(100000)
	if pv := PlannedValue(bac, start, finish, start.AddDate(0, 0, -1)); pv.Amount != 0 {
		t.Errorf("expected PV 0 before start got %v", pv.Amount)
	}
	if pv := PlannedValue(bac, start, finish, finish); pv.Amount != bac.Amount {
		t.Errorf("expected PV = BAC at finish got %v", pv.Amount)
	}
	if pv := PlannedValue(bac, start, finish, finish.AddDate(0, 0, 10)); pv.Amount != bac.Amount {
		t.Errorf("expected PV = BAC after finish got %v", pv.Amount)
	}
}

func TestActualCost_PriorityChain(t *testing.T) {
	explicit := usd(1234)
	hours40, hours100, hours160 := 40.0, 100.0, 160.0
	tasks := []model.Task{
		// Explicit actuals win.
		{ID: "explicit", BaselineCost: usd(5000), PercentComplete: 10, ActualCost: &explicit},
		// Hours ratio: 40/100 of 2000.
		{ID: "hours", BaselineCost: usd(2000), PercentComplete: 99, ActualHours: &hours40, BaselineHours: &hours100},
		// Ratio capped at 1 even when overbooked.
		{ID: "overbooked", BaselineCost: usd(1000), ActualHours: &hours160, BaselineHours: &hours100},
		// Fallback to percent complete.
		{ID: "fallback", BaselineCost: usd(1000), PercentComplete: 50},
	}
	ac, err := ActualCost(tasks, "USD")
	if err != nil {
		t.Fatalf("actual cost: %v", err)
	}
	want := 1234.0 + 800 + 1000 + 500
	if math.Abs(ac.Amount-want) > 1e-9 {
		t.Fatalf("expected AC %v got %v", want, ac.Amount)
	}
}

func TestActualCost_CurrencyMismatchAborts(t *testing.T) {
	bad := model.Money{Amount: 10, Currency: "EUR"}
	tasks := []model.Task{
		{ID: "good", BaselineCost: usd(1000), PercentComplete: 50},
		{ID: "bad", BaselineCost: usd(1000), ActualCost: &bad},
	}
	_, err := ActualCost(tasks, "USD")
	var cerr *model.CurrencyMismatchError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CurrencyMismatchError got %v", err)
	}
	if cerr.TaskID != "bad" {
		t.Fatalf("expected the offending task to be named got %q", cerr.TaskID)
	}
}

func TestBudgetAtCompletion_MixedCurrencies(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", BaselineCost: usd(100)},
		{ID: "b", BaselineCost: model.Money{Amount: 100, Currency: "EUR"}},
	}
	_, err := BudgetAtCompletion(tasks)
	var cerr *model.CurrencyMismatchError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CurrencyMismatchError got %v", err)
	}
}

func TestBudgetAtCompletion_Empty(t *testing.T) {
	if _, err := BudgetAtCompletion(nil); !errors.Is(err, model.ErrNoTasks) {
		t.Fatalf("expected ErrNoTasks got %v", err)
	}
}

func TestIndices_DivideByZeroGuards(t *testing.T) {
	// Nothing planned and nothing spent yet: SPI, CPI, EAC, VAC all
	// undefined, never NaN or Inf.
	tasks := []model.Task{{ID: "t1", BaselineCost: usd(1000)}}
	s, err := Compute(tasks, usd(1000), start, finish, start)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for name, idx := range map[string]Index{
		"SPI": s.SchedulePerformanceIndex,
		"CPI": s.CostPerformanceIndex,
		"EAC": s.EstimateAtCompletion,
		"VAC": s.VarianceAtCompletion,
	} {
		if idx.Valid {
			t.Errorf("%s should be undefined got %v", name, idx.Value)
		}
		if math.IsNaN(idx.Value) || math.IsInf(idx.Value, 0) {
			t.Errorf("%s leaked NaN/Inf", name)
		}
	}
}

func TestToComplete(t *testing.T) {
	idx := ToComplete(100000, 40000, 50000)
	if !idx.Valid || math.Abs(idx.Value-1.2) > 1e-9 {
		t.Fatalf("expected TCPI 1.2 got %+v", idx)
	}
	if got := ToComplete(100000, 40000, 100000); got.Valid {
		t.Fatalf("expected undefined TCPI when remaining budget is zero got %v", got.Value)
	}
	eacBased := ToCompleteEAC(100000, 40000, 50000, 125000)
	if !eacBased.Valid || math.Abs(eacBased.Value-0.8) > 1e-9 {
		t.Fatalf("expected EAC-based TCPI 0.8 got %+v", eacBased)
	}
	if got := ToCompleteEAC(100000, 40000, 50000, 50000); got.Valid {
		t.Fatalf("expected undefined EAC-based TCPI when forecast equals spend got %v", got.Value)
	}
}

func TestToComplete_OverSpentStaysDefined(t *testing.T) {
	// Spending past the budget is not degenerate: (100000-40000)/(100000-120000) = -3.
	idx := ToComplete(100000, 40000, 120000)
	if !idx.Valid {
		t.Fatalf("expected defined TCPI when spend exceeds budget")
	}
	if math.Abs(idx.Value+3) > 1e-9 {
		t.Fatalf("expected TCPI -3 got %v", idx.Value)
	}
}

func TestEACForecast(t *testing.T) {
	tasks := []model.Task{{ID: "t1", BaselineCost: usd(100000), PercentComplete: 50}}
	ac := usd(62500)
	tasks[0].ActualCost = &ac
	s, err := Compute(tasks, usd(100000), start, finish, start.AddDate(0, 0, 15))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// CPI = 50000/62500 = 0.8, EAC = 125000, VAC = -25000.
	if !s.EstimateAtCompletion.Valid || math.Abs(s.EstimateAtCompletion.Value-125000) > 1e-6 {
		t.Fatalf("expected EAC 125000 got %+v", s.EstimateAtCompletion)
	}
	if !s.VarianceAtCompletion.Valid || math.Abs(s.VarianceAtCompletion.Value+25000) > 1e-6 {
		t.Fatalf("expected VAC -25000 got %+v", s.VarianceAtCompletion)
	}
}
