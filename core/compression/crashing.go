package compression

import "github.com/mreynaud/schedcore/core/model"

// CrashAction is one crashing opportunity: spend money, save time.
type CrashAction struct {
	TaskID        string
	TimeSavedDays float64
	CostIncrease  model.Money
	// EfficiencyPerDay is the extra cost per day saved. Lower is better.
	EfficiencyPerDay float64
}

// crashCandidates builds the efficiency-ranked crash list for critical
// tasks carrying crash data. Mixed currencies abort the run.
func crashCandidates(tasks []model.Task, critical map[string]bool) ([]CrashAction, error) {
	var out []CrashAction
	currency := ""
	for _, t := range tasks {
		if !critical[t.ID] || t.Crash == nil {
			continue
		}
		saved := t.DurationDays - t.Crash.CrashedDurationDays
		if saved <= 0 {
			continue
		}
		cost, err := t.Crash.CrashedCost.Add(t.BaselineCost.Scale(-1))
		if err != nil {
			return nil, &model.CurrencyMismatchError{TaskID: t.ID, Want: t.Crash.CrashedCost.Currency, Got: t.BaselineCost.Currency}
		}
		if currency == "" {
			currency = cost.Currency
		} else if cost.Currency != currency {
			return nil, &model.CurrencyMismatchError{TaskID: t.ID, Want: currency, Got: cost.Currency}
		}
		out = append(out, CrashAction{
			TaskID:           t.ID,
			TimeSavedDays:    saved,
			CostIncrease:     cost,
			EfficiencyPerDay: cost.Amount / saved,
		})
	}
	sortStable(out, func(a CrashAction) float64 { return a.EfficiencyPerDay }, func(a CrashAction) string { return a.TaskID })
	return out, nil
}

// applyCrashes walks the ranked candidates and applies them until the
// target is met or the cost cap would be exceeded. Returns the remaining
// reduction target.
func applyCrashes(res *Result, candidates []CrashAction, remaining float64, costCap *model.Money) float64 {
	spent := 0.0
	for _, c := range candidates {
		if remaining <= 0 {
			break
		}
		if costCap != nil && spent+c.CostIncrease.Amount > costCap.Amount {
			break
		}
		res.Crashes = append(res.Crashes, c)
		spent += c.CostIncrease.Amount
		remaining -= c.TimeSavedDays
		res.TotalCostIncrease = model.Money{Amount: spent, Currency: c.CostIncrease.Currency}
	}
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
