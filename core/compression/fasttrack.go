package compression

import "github.com/mreynaud/schedcore/core/model"

// FastTrackAction is one overlap opportunity: run a critical pair in
// parallel, accept rework risk.
type FastTrackAction struct {
	TaskID        string
	SuccessorID   string
	TimeSavedDays float64
	Risk          model.RiskLevel
	// RiskScore combines the risk level with the rework probability.
	RiskScore float64
}

// fastTrackScore weighs the qualitative level by the rework probability.
// A low-risk overlap with no expected rework scores 1; an extreme one with
// certain rework scores 8.
func fastTrackScore(level model.RiskLevel, reworkProb float64) float64 {
	return float64(level+1) * (1 + reworkProb)
}

// fastTrackCandidates builds the benefit-ranked fast-track list for
// critical tasks with a defined successor pair.
func fastTrackCandidates(tasks []model.Task, critical map[string]bool) []FastTrackAction {
	var out []FastTrackAction
	for _, t := range tasks {
		if !critical[t.ID] || t.FastTrack == nil || t.FastTrack.SuccessorID == "" {
			continue
		}
		saved := t.FastTrack.OriginalLagDays - t.FastTrack.ProposedLagDays
		if saved <= 0 {
			continue
		}
		out = append(out, FastTrackAction{
			TaskID:        t.ID,
			SuccessorID:   t.FastTrack.SuccessorID,
			TimeSavedDays: saved,
			Risk:          t.FastTrack.Risk,
			RiskScore:     fastTrackScore(t.FastTrack.Risk, t.FastTrack.ReworkProb),
		})
	}
	// Best time saved per unit of risk first.
	sortStable(out, func(a FastTrackAction) float64 { return -a.TimeSavedDays / a.RiskScore }, func(a FastTrackAction) string { return a.TaskID })
	return out
}

// applyFastTracks applies ranked candidates toward the remaining target,
// skipping any whose risk score exceeds the cap. Returns the remaining
// reduction target.
func applyFastTracks(res *Result, candidates []FastTrackAction, remaining float64, riskCap *float64) float64 {
	for _, c := range candidates {
		if remaining <= 0 {
			break
		}
		if riskCap != nil && c.RiskScore > *riskCap {
			continue
		}
		res.FastTracks = append(res.FastTracks, c)
		res.TotalRiskScore += c.RiskScore
		remaining -= c.TimeSavedDays
	}
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
