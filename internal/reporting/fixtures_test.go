package reporting

import (
	"time"

	"github.com/agentsleague/prepeval/internal/models"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestResults() []models.CaseEvaluationResult {
	return []models.CaseEvaluationResult{
		{
			CaseID: "eng-1", AgentName: "engagement-agent", ScenarioID: "s1", ThresholdProfile: "prep_default",
			CompositeScore: 4.2, Passed: true, DurationMs: 1200,
			Metrics: []models.MetricEvaluationResult{
				{MetricName: "CoherenceExplain", EvalName: "Coherence", Score: 4, ProbScore: 0.75},
				{MetricName: "RelevanceExplain", EvalName: "Relevance", Score: 4.4, ProbScore: 0.85},
			},
		},
		{
			CaseID: "eng-2", AgentName: "Engagement-Agent", ThresholdProfile: "prep_default",
			CompositeScore: 3.0, Passed: false, FailureReason: "Composite=3.00 (<3.65)", DurationMs: 800,
			Metrics: []models.MetricEvaluationResult{
				{MetricName: "coherenceexplain", EvalName: "Coherence", Score: 3, ProbScore: 0.5},
				{MetricName: "RelevanceExplain", EvalName: "Relevance", Score: 3, ProbScore: 0.5},
			},
		},
		{
			CaseID: "cur-1", AgentName: "learning-path-curator",
			CompositeScore: 0, Passed: false, FailureReason: "Agent 'learning-path-curator' returned an empty response for case 'cur-1'.",
			Metrics: []models.MetricEvaluationResult{},
		},
	}
}
