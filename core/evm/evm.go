// Package evm computes earned value management metrics: PV, EV, AC and the
// derived variances, indices and forecasts. Every ratio guards division by
// zero with an explicit undefined value instead of NaN or Inf.
package evm

import (
	"time"

	"github.com/mreynaud/schedcore/core/model"
)

// Index is a performance ratio that may be undefined when its denominator
// is zero. Callers must check Valid before using Value.
type Index struct {
	Value float64
	Valid bool
}

// Defined wraps a computed value.
func Defined(v float64) Index { return Index{Value: v, Valid: true} }

// Undefined is the explicit not-computable index.
var Undefined = Index{}

// ratio divides num by den, undefined when den is not positive. Used for
// SPI and CPI, whose denominators are non-negative money sums.
func ratio(num, den float64) Index {
	if den <= 0 {
		return Undefined
	}
	return Defined(num / den)
}

// Snapshot is the full earned value picture of a project as of one instant.
type Snapshot struct {
	AsOf     time.Time
	Currency string

	BudgetAtCompletion model.Money
	PlannedValue       model.Money
	EarnedValue        model.Money
	ActualCost         model.Money

	ScheduleVariance model.Money // EV - PV
	CostVariance     model.Money // EV - AC

	SchedulePerformanceIndex Index // EV / PV
	CostPerformanceIndex     Index // EV / AC
	EstimateAtCompletion     Index // BAC / CPI, in currency units
	VarianceAtCompletion     Index // BAC - EAC, in currency units
	ToCompleteIndex          Index // (BAC-EV) / (BAC-AC)
}

// BudgetAtCompletion sums the baseline cost across all tasks. Tasks must
// share one currency.
func BudgetAtCompletion(tasks []model.Task) (model.Money, error) {
	if len(tasks) == 0 {
		return model.Money{}, model.ErrNoTasks
	}
	bac := tasks[0].BaselineCost
	for _, t := range tasks[1:] {
		sum, err := bac.Add(t.BaselineCost)
		if err != nil {
			return model.Money{}, &model.CurrencyMismatchError{TaskID: t.ID, Want: bac.Currency, Got: t.BaselineCost.Currency}
		}
		bac = sum
	}
	return bac, nil
}

// PlannedValue follows a linear time-proportion model: zero before the
// project starts, the full budget at or after the finish, and a straight
// interpolation in between.
func PlannedValue(bac model.Money, start, finish, asOf time.Time) model.Money {
	if !asOf.After(start) {
		return model.Money{Currency: bac.Currency}
	}
	if !asOf.Before(finish) {
		return bac
	}
	total := finish.Sub(start)
	if total <= 0 {
		return bac
	}
	return bac.Scale(float64(asOf.Sub(start)) / float64(total))
}

// EarnedValue weights each task's percent complete by its share of the
// budget, which reduces to summing completed baseline cost.
func EarnedValue(tasks []model.Task, currency string) model.Money {
	ev := model.Money{Currency: currency}
	for _, t := range tasks {
		ev.Amount += t.BaselineCost.Amount * t.PercentComplete / 100
	}
	return ev
}

// ActualCost derives the money spent so far. Per task, in priority order:
// an explicit actual-cost record (rejected if its currency differs from the
// baseline), the booked-to-planned labor hour ratio capped at 1 applied to
// baseline cost, or baseline cost scaled by percent complete. One bad task
// aborts the whole aggregation so the total is never silently wrong.
func ActualCost(tasks []model.Task, currency string) (model.Money, error) {
	ac := model.Money{Currency: currency}
	for _, t := range tasks {
		cost, err := taskActualCost(t)
		if err != nil {
			return model.Money{}, err
		}
		ac.Amount += cost
	}
	return ac, nil
}

func taskActualCost(t model.Task) (float64, error) {
	if t.ActualCost != nil {
		if t.ActualCost.Currency != t.BaselineCost.Currency {
			return 0, &model.CurrencyMismatchError{TaskID: t.ID, Want: t.BaselineCost.Currency, Got: t.ActualCost.Currency}
		}
		return t.ActualCost.Amount, nil
	}
	if t.ActualHours != nil && t.BaselineHours != nil && *t.BaselineHours > 0 {
		used := *t.ActualHours / *t.BaselineHours
		if used > 1 {
			used = 1
		}
		return t.BaselineCost.Amount * used, nil
	}
	return t.BaselineCost.Amount * t.PercentComplete / 100, nil
}

// Compute assembles the full snapshot. The caller supplies the BAC computed
// once per analysis so EVM, variance and TCPI views agree on it.
func Compute(tasks []model.Task, bac model.Money, start, finish, asOf time.Time) (*Snapshot, error) {
	pv := PlannedValue(bac, start, finish, asOf)
	ev := EarnedValue(tasks, bac.Currency)
	ac, err := ActualCost(tasks, bac.Currency)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		AsOf:               asOf,
		Currency:           bac.Currency,
		BudgetAtCompletion: bac,
		PlannedValue:       pv,
		EarnedValue:        ev,
		ActualCost:         ac,
		ScheduleVariance:   model.Money{Amount: ev.Amount - pv.Amount, Currency: bac.Currency},
		CostVariance:       model.Money{Amount: ev.Amount - ac.Amount, Currency: bac.Currency},
	}
	s.SchedulePerformanceIndex = ratio(ev.Amount, pv.Amount)
	s.CostPerformanceIndex = ratio(ev.Amount, ac.Amount)
	if cpi := s.CostPerformanceIndex; cpi.Valid && cpi.Value != 0 {
		s.EstimateAtCompletion = Defined(bac.Amount / cpi.Value)
		s.VarianceAtCompletion = Defined(bac.Amount - s.EstimateAtCompletion.Value)
	}
	s.ToCompleteIndex = ToComplete(bac.Amount, ev.Amount, ac.Amount)
	return s, nil
}

// ToComplete computes the BAC-based to-complete performance index:
// remaining work over remaining budget. Undefined only when spend exactly
// equals the budget; an over-spent project yields a negative index.
func ToComplete(bac, ev, ac float64) Index {
	if bac == ac {
		return Undefined
	}
	return Defined((bac - ev) / (bac - ac))
}

// ToCompleteEAC is the EAC-based variant: remaining work over the
// remaining forecast spend.
func ToCompleteEAC(bac, ev, ac, eac float64) Index {
	if eac == ac {
		return Undefined
	}
	return Defined((bac - ev) / (eac - ac))
}
