package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentsleague/prepeval/internal/models"
	"github.com/agentsleague/prepeval/internal/reporting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(passed bool) *models.EvalRunReport {
	result := models.CaseEvaluationResult{
		CaseID:           "eng-1",
		AgentName:        "engagement-agent",
		ScenarioID:       "s-1",
		ThresholdProfile: "prep_default",
		CompositeScore:   4.2,
		Passed:           passed,
		Metrics: []models.MetricEvaluationResult{
			{MetricName: "CoherenceExplain", EvalName: "Coherence", Score: 4.2, ProbScore: 0.8},
		},
	}
	if !passed {
		result.CompositeScore = 3.0
		result.FailureReason = "Composite=3.00 (<3.65)"
	}
	return reporting.BuildReport([]models.CaseEvaluationResult{result}, "run-1", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
}

func TestReportCommand_PrintsSummary(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "report.json.gz")
	require.NoError(t, reporting.WriteReport(path, sampleReport(true)))
	junitPath := filepath.Join(dir, "junit.xml")

	out, err := executeRoot(t, "report", path, "--junit", junitPath)
	require.NoError(t, err, out)

	assert.Contains(t, out, "=== Per-Agent Evaluation Report ===")
	assert.Contains(t, out, "Agent: engagement-agent")
	assert.Contains(t, out, "Overall pass rate: 100.00%")
	assert.Contains(t, out, "Report written: "+path)

	data, err := os.ReadFile(junitPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `name="eng-1 (s-1)"`)
}

func TestReportCommand_FailedCases(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "report.json")
	require.NoError(t, reporting.WriteReport(path, sampleReport(false)))

	out, err := executeRoot(t, "report", path)
	var caseErr *CaseFailureError
	require.ErrorAs(t, err, &caseErr)
	assert.Equal(t, 1, caseErr.Failed)
	assert.Contains(t, out, "Composite=3.00 (<3.65)")
}

func TestReportCommand_MissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := executeRoot(t, "report", filepath.Join(dir, "nope.json"))
	require.Error(t, err)
	assert.Equal(t, ExitError, exitCode(err))
}
