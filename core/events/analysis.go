package events

import "time"

// AnalysisStarted is published when the orchestrator begins an operation.
type AnalysisStarted struct {
	AnalysisID string
	ProjectID  string
	Operation  string
	At         time.Time
}

// AnalysisCompleted is published when an operation finishes successfully.
type AnalysisCompleted struct {
	AnalysisID string
	ProjectID  string
	Operation  string
	Elapsed    time.Duration
}

// AnalysisFailed is published when an operation returns an error.
type AnalysisFailed struct {
	AnalysisID string
	ProjectID  string
	Operation  string
	Elapsed    time.Duration
	Err        error
}
