package models

import "time"

// MetricEvaluationResult is one judge verdict for a single quality dimension.
type MetricEvaluationResult struct {
	MetricName     string  `json:"metricName"`
	EvalName       string  `json:"evalName"`
	Score          float64 `json:"score"`
	ProbScore      float64 `json:"probScore"`
	Reasoning      string  `json:"reasoning,omitempty"`
	ChainOfThought string  `json:"chainOfThought,omitempty"`
}

// CaseEvaluationResult is the scored outcome of one dataset case. Cases that
// failed before scoring carry a zero composite and no metrics.
type CaseEvaluationResult struct {
	CaseID           string                   `json:"caseId"`
	AgentName        string                   `json:"agentName"`
	ScenarioID       string                   `json:"scenarioId"`
	ThresholdProfile string                   `json:"thresholdProfile"`
	CompositeScore   float64                  `json:"compositeScore"`
	Passed           bool                     `json:"passed"`
	FailureReason    string                   `json:"failureReason,omitempty"`
	Metrics          []MetricEvaluationResult `json:"metrics"`
	DurationMs       int64                    `json:"durationMs"`
}

// MetricAverageReport averages every instance of a metric seen for an agent.
type MetricAverageReport struct {
	Count            int     `json:"count"`
	AverageScore     float64 `json:"averageScore"`
	AverageProbScore float64 `json:"averageProbScore"`
}

// AgentEvaluationReport summarizes all cases that targeted one agent.
type AgentEvaluationReport struct {
	TotalCases       int                            `json:"totalCases"`
	PassedCases      int                            `json:"passedCases"`
	PassRate         float64                        `json:"passRate"`
	CompositeAverage float64                        `json:"compositeAverage"`
	Explanation      string                         `json:"explanation"`
	MetricAverages   map[string]MetricAverageReport `json:"metricAverages"`
}

// EvalRunReport is the document written at the end of a run.
type EvalRunReport struct {
	RunID           string                           `json:"runId,omitempty"`
	GeneratedAtUTC  time.Time                        `json:"generatedAtUtc"`
	TotalCases      int                              `json:"totalCases"`
	TotalPassed     int                              `json:"totalPassed"`
	OverallPassRate float64                          `json:"overallPassRate"`
	PerAgent        map[string]AgentEvaluationReport `json:"perAgent"`
	Cases           []CaseEvaluationResult           `json:"cases"`
}
