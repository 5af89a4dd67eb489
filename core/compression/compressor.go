// Package compression shortens a schedule toward a target duration
// reduction by crashing critical tasks and fast-tracking critical task
// pairs. Both tactics are greedy: crashing picks the cheapest time savings
// first, fast-tracking the best time-per-risk ratio. The combination is a
// local-optimum heuristic, not an exact solver.
package compression

import (
	"fmt"
	"sort"

	"github.com/mreynaud/schedcore/core/model"
)

// Request bounds one compression run.
type Request struct {
	TargetReductionDays float64
	// MaxCostIncrease caps the aggregate crash cost. Nil means uncapped.
	// A non-empty currency must match the task baseline currency; an empty
	// currency inherits it.
	MaxCostIncrease *model.Money
	// MaxRiskScore skips fast-track actions scoring above it. Nil means
	// uncapped.
	MaxRiskScore *float64
}

// RiskBand qualifies an aggregate risk score.
type RiskBand string

const (
	BandLow      RiskBand = "low"
	BandModerate RiskBand = "moderate"
	BandHigh     RiskBand = "high"
	BandExtreme  RiskBand = "extreme"
)

// Confidence qualifies how much of the compression came from low-risk
// crashing versus rework-prone fast-tracking.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Result is the outcome of one compression run.
type Result struct {
	OriginalDurationDays   float64
	CompressedDurationDays float64
	TimeSavedDays          float64
	Crashes                []CrashAction
	FastTracks             []FastTrackAction
	// Opportunities lists every crash candidate on the critical path in
	// efficiency order, applied or not, for ranking displays.
	Opportunities     []CrashAction
	TotalCostIncrease model.Money
	TotalRiskScore    float64
	Band              RiskBand
	Confidence        Confidence
	Recommendation    string
}

// Compress applies crashing first, then fast-tracking for any remaining
// reduction. criticalPath carries the task identifiers with zero float;
// only those can shorten the project.
func Compress(tasks []model.Task, criticalPath []string, originalDuration float64, req Request) (*Result, error) {
	if req.TargetReductionDays <= 0 {
		return nil, &model.ValidationError{Field: "target_reduction", Reason: "target reduction must be positive"}
	}
	critical := make(map[string]bool, len(criticalPath))
	for _, id := range criticalPath {
		critical[id] = true
	}

	candidates, err := crashCandidates(tasks, critical)
	if err != nil {
		return nil, err
	}
	// Candidates share one currency, so checking the first one suffices.
	if limit := req.MaxCostIncrease; limit != nil && limit.Currency != "" && len(candidates) > 0 &&
		candidates[0].CostIncrease.Currency != limit.Currency {
		return nil, &model.CurrencyMismatchError{Want: candidates[0].CostIncrease.Currency, Got: limit.Currency}
	}

	res := &Result{
		OriginalDurationDays: originalDuration,
		Opportunities:        candidates,
	}
	remaining := req.TargetReductionDays
	remaining = applyCrashes(res, candidates, remaining, req.MaxCostIncrease)
	remaining = applyFastTracks(res, fastTrackCandidates(tasks, critical), remaining, req.MaxRiskScore)

	for _, c := range res.Crashes {
		res.TimeSavedDays += c.TimeSavedDays
	}
	for _, f := range res.FastTracks {
		res.TimeSavedDays += f.TimeSavedDays
	}
	res.CompressedDurationDays = originalDuration - res.TimeSavedDays
	res.Band = riskBand(res.TotalRiskScore)
	res.Confidence = confidence(res)
	res.Recommendation = recommendation(res, req, remaining)
	return res, nil
}

// riskBand maps an aggregate risk score onto qualitative bands.
func riskBand(score float64) RiskBand {
	switch {
	case score <= 2:
		return BandLow
	case score <= 5:
		return BandModerate
	case score <= 9:
		return BandHigh
	default:
		return BandExtreme
	}
}

// confidence grades the result by the share of savings that came from
// crashing rather than fast-tracking.
func confidence(res *Result) Confidence {
	if res.TimeSavedDays <= 0 {
		return ConfidenceLow
	}
	var crashed float64
	for _, c := range res.Crashes {
		crashed += c.TimeSavedDays
	}
	share := crashed / res.TimeSavedDays
	switch {
	case share >= 0.7:
		return ConfidenceHigh
	case share >= 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func recommendation(res *Result, req Request, remaining float64) string {
	if res.TimeSavedDays <= 0 {
		return "no compression applied: no crashable or fast-trackable critical tasks within the caps"
	}
	if remaining > 1e-9 {
		return fmt.Sprintf("partial compression: %.1f of %.1f day(s) saved; %.1f day(s) unreachable within the caps (%s risk)",
			res.TimeSavedDays, req.TargetReductionDays, remaining, res.Band)
	}
	return fmt.Sprintf("target met: %.1f day(s) saved for %s extra cost at %s risk",
		res.TimeSavedDays, res.TotalCostIncrease, res.Band)
}

// sortStable orders candidates ascending by key with the task identifier as
// tie-break.
func sortStable[T any](items []T, key func(T) float64, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ki, kj := key(items[i]), key(items[j])
		if ki != kj {
			return ki < kj
		}
		return id(items[i]) < id(items[j])
	})
}
