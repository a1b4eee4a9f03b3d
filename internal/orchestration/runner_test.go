package orchestration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agentsleague/prepeval/internal/agents"
	"github.com/agentsleague/prepeval/internal/config"
	"github.com/agentsleague/prepeval/internal/dataset"
	"github.com/agentsleague/prepeval/internal/execution"
	"github.com/agentsleague/prepeval/internal/judge"
	"github.com/agentsleague/prepeval/internal/models"
	"github.com/agentsleague/prepeval/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type harness struct {
	runner *EvalRunner
	engine *execution.MockEngine
	judge  judge.Judge
	policy *scoring.Policy
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, stub judge.Judge, cfgOpts ...config.RunOption) *harness {
	t.Helper()
	h := &harness{
		engine: execution.NewMockEngine("mock-model"),
		judge:  stub,
		policy: scoring.DefaultPolicy(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.runner = NewEvalRunner(
		config.NewRunConfig(cfgOpts...),
		agents.NewChain(h.engine),
		judge.NewAdapter(stub),
		WithPolicy(h.policy),
		WithOutput(h.stdout, h.stderr),
		WithClock(func() time.Time { return fixedNow }),
		WithRunID("run-test"),
	)
	return h
}

func metricNamesOf(results []models.MetricEvaluationResult) []string {
	names := make([]string, len(results))
	for i, m := range results {
		names[i] = m.MetricName
	}
	return names
}

func TestEvalRunner_WeightedComposite(t *testing.T) {
	stub := judge.NewStubJudge(5).
		WithScore("CoherenceExplain", 4.0).
		WithScore("RelevanceExplain", 3.0)
	h := newHarness(t, stub, config.WithMaxConcurrency(1))
	h.policy.SetProfile(scoring.Profile{
		Name:          "engagement_test",
		PassComposite: 3.5,
		Weights:       map[string]float64{"CoherenceExplain": 0.6, "RelevanceExplain": 0.4},
	})

	report, err := h.runner.Evaluate(context.Background(), []models.DatasetCase{{
		CaseID:           "eng-1",
		AgentName:        "engagement-agent",
		ThresholdProfile: "engagement_test",
		RequiredEvals:    []string{"CoherenceExplain", "RelevanceExplain"},
		Question:         "Student topics: AZ-900. Weekly study hours: 5. Duration in weeks: 4.",
	}})
	require.NoError(t, err)
	require.Len(t, report.Cases, 1)

	got := report.Cases[0]
	assert.Equal(t, "run-test", report.RunID)
	assert.Equal(t, fixedNow, report.GeneratedAtUTC)
	assert.Equal(t, "engagement_test", got.ThresholdProfile)
	assert.InDelta(t, 3.6, got.CompositeScore, 1e-9)
	assert.Equal(t, []string{"CoherenceExplain", "RelevanceExplain"}, metricNamesOf(got.Metrics))
	assert.False(t, got.Passed, "relevance misses its 3.6 threshold")
	assert.Equal(t, "Below threshold: RelevanceExplain=3.00 (<3.60)", got.FailureReason)

	// The chain replays curator and planner before the engagement agent.
	reqs := h.engine.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, string(agents.RoleCurator), reqs[0].Role)
	assert.Equal(t, string(agents.RolePlanner), reqs[1].Role)
	assert.Equal(t, string(agents.RoleEngagement), reqs[2].Role)

	assert.Contains(t, h.stdout.String(), "Loaded 1 dataset cases.\nMetric max concurrency: 1\n[1/1] Evaluating eng-1 (engagement-agent)...\n")
	assert.Empty(t, h.stderr.String())
}

func TestEvalRunner_HardFailOverridesComposite(t *testing.T) {
	stub := judge.NewStubJudge(5).WithScore("TaskAdherenceExplain", 2.9)
	h := newHarness(t, stub)

	report, err := h.runner.Evaluate(context.Background(), []models.DatasetCase{{
		CaseID:    "cur-1",
		AgentName: "learning-path-curator",
		Question:  "Which learning paths cover AZ-900?",
	}})
	require.NoError(t, err)

	got := report.Cases[0]
	assert.Equal(t, scoring.ProfileDefault, got.ThresholdProfile)
	assert.Greater(t, got.CompositeScore, 3.65)
	assert.False(t, got.Passed)
	assert.Contains(t, got.FailureReason, "Hard-fail metrics")
	assert.Contains(t, got.FailureReason, "TaskAdherenceExplain=2.90")
}

func TestEvalRunner_MetricSelection(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		want     []string
	}{
		{
			name: "defaults when none required",
			want: judge.DefaultMetrics(),
		},
		{
			name:     "duplicates and aliases collapse",
			required: []string{"RelevanceExplain", "relevanceexplain", "PerceivedIntelligenceNonRagExplain", "PerceivedIntelligenceExplain"},
			want:     []string{"RelevanceExplain", "PerceivedIntelligenceExplain"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, judge.NewStubJudge(4.5), config.WithMaxConcurrency(4))
			report, err := h.runner.Evaluate(context.Background(), []models.DatasetCase{{
				CaseID:        "c1",
				AgentName:     "learning-path-curator",
				Question:      "AZ-900 paths",
				RequiredEvals: tt.required,
			}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, metricNamesOf(report.Cases[0].Metrics))
		})
	}
}

func TestEvalRunner_CaseErrorsBecomePlaceholders(t *testing.T) {
	stub := judge.NewStubJudge(5).WithError("FluencyExplain", errors.New("judge unavailable"))
	h := newHarness(t, stub)
	h.engine.WithResponse(string(agents.RolePlanner), execution.MockResponse{Output: "   "})

	cases := []models.DatasetCase{
		{CaseID: "bad-agent", AgentName: "mystery-agent", ThresholdProfile: "assessment_strict"},
		{CaseID: "empty", AgentName: "study-plan-generator", Question: "AZ-104"},
		{CaseID: "judge-down", AgentName: "learning-path-curator", Question: "AZ-900", RequiredEvals: []string{"CoherenceExplain", "FluencyExplain"}},
		{CaseID: "unknown-metric", AgentName: "learning-path-curator", Question: "AZ-900", RequiredEvals: []string{"BogusExplain"}},
		{CaseID: "ok", AgentName: "learning-path-curator", Question: "AZ-900", RequiredEvals: []string{"CoherenceExplain"}},
	}
	report, err := h.runner.Evaluate(context.Background(), cases)
	require.NoError(t, err)
	require.Len(t, report.Cases, 5, "every attempted case appears exactly once")

	wantReasons := []string{
		"Unsupported agent 'mystery-agent' for case 'bad-agent'.",
		"Agent 'study-plan-generator' returned an empty response for case 'empty'.",
		"judge unavailable",
		"Unsupported metric: BogusExplain",
	}
	for i, want := range wantReasons {
		c := report.Cases[i]
		assert.Equal(t, cases[i].CaseID, c.CaseID)
		assert.False(t, c.Passed)
		assert.Zero(t, c.CompositeScore)
		assert.NotNil(t, c.Metrics)
		assert.Empty(t, c.Metrics)
		assert.Equal(t, want, c.FailureReason)
		assert.Contains(t, h.stderr.String(), fmt.Sprintf("Case %s failed during runtime input generation/evaluation: %s\n", c.CaseID, want))
	}
	assert.Equal(t, "assessment_strict", report.Cases[0].ThresholdProfile)

	assert.True(t, report.Cases[4].Passed)
	assert.Equal(t, 1, report.TotalPassed)
	assert.InDelta(t, 0.2, report.OverallPassRate, 1e-9)
}

func TestEvalRunner_ConcurrencyKeepsMetricOrder(t *testing.T) {
	required := []string{"HelpfulnessExplain", "CoherenceExplain", "FluencyExplain", "RelevanceExplain", "EmpathyExplain"}
	stub := judge.NewStubJudge(4)
	for i, m := range required {
		stub.WithScore(m, float64(i+1))
	}
	h := newHarness(t, stub, config.WithMaxConcurrency(3))

	report, err := h.runner.Evaluate(context.Background(), []models.DatasetCase{{
		CaseID: "c1", AgentName: "learning-path-curator", Question: "AZ-900", RequiredEvals: required,
	}})
	require.NoError(t, err)

	metrics := report.Cases[0].Metrics
	assert.Equal(t, required, metricNamesOf(metrics))
	for i, m := range metrics {
		assert.Equal(t, float64(i+1), m.Score, m.MetricName)
	}
	assert.Len(t, stub.Inputs(), len(required))
}

func TestEvalRunner_BlankProfileUsesDefault(t *testing.T) {
	h := newHarness(t, judge.NewStubJudge(5))

	report, err := h.runner.Evaluate(context.Background(), []models.DatasetCase{
		{CaseID: "c1", AgentName: "learning-path-curator", Question: "AZ-900", ThresholdProfile: "  ", RequiredEvals: []string{"CoherenceExplain"}},
		{CaseID: "c2", AgentName: "learning-path-curator", Question: "AZ-900", ThresholdProfile: " assessment_strict ", RequiredEvals: []string{"CoherenceExplain"}},
	})
	require.NoError(t, err)
	require.Len(t, report.Cases, 2)
	assert.Equal(t, scoring.ProfileDefault, report.Cases[0].ThresholdProfile)
	assert.True(t, report.Cases[0].Passed)
	assert.Equal(t, scoring.ProfileAssessmentStrict, report.Cases[1].ThresholdProfile)
}

func TestEvalRunner_CancellationStopsBeforeNextCase(t *testing.T) {
	h := newHarness(t, judge.NewStubJudge(5))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.runner.OnProgress(func(e ProgressEvent) {
		if e.EventType == EventCaseCompleted && e.CaseNum == 1 {
			cancel()
		}
	})

	cases := []models.DatasetCase{
		{CaseID: "c1", AgentName: "learning-path-curator", Question: "AZ-900"},
		{CaseID: "c2", AgentName: "learning-path-curator", Question: "AZ-104"},
	}
	report, err := h.runner.Evaluate(ctx, cases)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	require.Len(t, report.Cases, 1)
	assert.Equal(t, "c1", report.Cases[0].CaseID)
	assert.Len(t, h.engine.Requests(), 1, "the second case never ran")
}

func TestEvalRunner_StoppedRunReportsError(t *testing.T) {
	h := newHarness(t, judge.NewStubJudge(5))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events []ProgressEvent
	h.runner.OnProgress(func(e ProgressEvent) {
		events = append(events, e)
		if e.EventType == EventCaseCompleted {
			cancel()
		}
	})

	_, err := h.runner.Evaluate(ctx, []models.DatasetCase{
		{CaseID: "c1", AgentName: "learning-path-curator", Question: "AZ-900"},
		{CaseID: "c2", AgentName: "learning-path-curator", Question: "AZ-104"},
	})
	require.ErrorIs(t, err, context.Canceled)

	require.GreaterOrEqual(t, len(events), 2)
	stopped := events[len(events)-2]
	assert.Equal(t, EventRunError, stopped.EventType)
	assert.Equal(t, context.Canceled.Error(), stopped.Details["error"])
	assert.Equal(t, 1, stopped.Details["completed_cases"])
	assert.Equal(t, EventRunCompleted, events[len(events)-1].EventType)
	assert.Equal(t, true, events[len(events)-1].Details["stopped"])
}

func TestEvalRunner_CancelledCaseIsExcluded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stub := judge.NewStubJudge(5)
	h := newHarness(t, cancellingJudge{inner: stub, cancel: cancel})

	report, err := h.runner.Evaluate(ctx, []models.DatasetCase{
		{CaseID: "c1", AgentName: "learning-path-curator", Question: "AZ-900", RequiredEvals: []string{"CoherenceExplain"}},
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Cases)
	assert.Empty(t, h.stderr.String())
}

// cancellingJudge cancels the run while judging.
type cancellingJudge struct {
	inner  judge.Judge
	cancel context.CancelFunc
}

func (c cancellingJudge) Judge(ctx context.Context, in judge.Input) (judge.Verdict, error) {
	c.cancel()
	return c.inner.Judge(ctx, in)
}

func TestEvalRunner_ProgressEvents(t *testing.T) {
	h := newHarness(t, judge.NewStubJudge(5))

	var mu sync.Mutex
	var events []ProgressEvent
	h.runner.OnProgress(func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	_, err := h.runner.Evaluate(context.Background(), []models.DatasetCase{
		{CaseID: "c1", AgentName: "learning-path-curator", Question: "AZ-900", RequiredEvals: []string{"CoherenceExplain"}},
		{CaseID: "c2", AgentName: "nobody"},
	})
	require.NoError(t, err)

	var types []EventType
	for _, e := range events {
		types = append(types, e.EventType)
		assert.Equal(t, "run-test", e.RunID)
	}
	assert.Equal(t, []EventType{
		EventRunStarted,
		EventCaseStarted, EventCaseCompleted,
		EventCaseStarted, EventCaseFailed,
		EventRunCompleted,
	}, types)

	completed := events[2]
	assert.Equal(t, "c1", completed.CaseID)
	assert.True(t, completed.Passed)
	assert.Equal(t, 1, completed.CaseNum)
	assert.Equal(t, 2, completed.TotalCases)
	assert.Equal(t, map[string]float64{"CoherenceExplain": 5}, completed.Details["scores"])

	failed := events[4]
	assert.Contains(t, failed.Details["error"], "Unsupported agent 'nobody'")

	done := events[5]
	assert.Equal(t, 1, done.Details["passed"])
	assert.Equal(t, 1, done.Details["failed"])
	assert.Equal(t, false, done.Details["stopped"])
}

func writeDataset(t *testing.T, lines ...string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cases.explain.jsonl")
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return p
}

func TestEvalRunner_Run(t *testing.T) {
	path := writeDataset(t,
		`{"case_id":"c1","scenario_id":"az-900","agent_name":"learning-path-curator","question":"AZ-900","required_evals":["CoherenceExplain"]}`,
		`{"case_id":"c2","scenario_id":"az-104","agent_name":"learning-path-curator","question":"AZ-104","required_evals":["CoherenceExplain"]}`,
		`{"case_id":"c3","scenario_id":"az-204","agent_name":"engagement-agent","question":"AZ-204","required_evals":["CoherenceExplain"]}`,
	)

	t.Run("loads filters and evaluates", func(t *testing.T) {
		h := newHarness(t, judge.NewStubJudge(5),
			config.WithDatasetFiles(path),
			config.WithSkipLines(0),
			config.WithAgents("Learning-Path-Curator"),
			config.WithCaseFilters("az-1*", "c1"),
		)
		report, err := h.runner.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, report.Cases, 2)
		assert.Equal(t, "c1", report.Cases[0].CaseID)
		assert.Equal(t, "c2", report.Cases[1].CaseID)
		assert.Equal(t, 2, report.PerAgent["learning-path-curator"].PassedCases)
	})

	t.Run("nothing left to evaluate", func(t *testing.T) {
		h := newHarness(t, judge.NewStubJudge(5),
			config.WithDatasetFiles(path),
			config.WithSkipLines(0),
			config.WithCaseFilters("zzz"),
		)
		report, err := h.runner.Run(context.Background())
		require.ErrorIs(t, err, dataset.ErrNoCases)
		assert.Nil(t, report)
	})

	t.Run("missing dataset file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.jsonl")
		h := newHarness(t, judge.NewStubJudge(5), config.WithDatasetFiles(missing))
		_, err := h.runner.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), missing)
	})
}

func TestEvalRunner_EmptyCaseList(t *testing.T) {
	h := newHarness(t, judge.NewStubJudge(5))
	_, err := h.runner.Evaluate(context.Background(), nil)
	require.ErrorIs(t, err, dataset.ErrNoCases)
}

func TestNewEvalRunner_GeneratesRunID(t *testing.T) {
	a := NewEvalRunner(config.NewRunConfig(), nil, nil)
	b := NewEvalRunner(config.NewRunConfig(), nil, nil)
	assert.Len(t, a.RunID(), 36)
	assert.NotEqual(t, a.RunID(), b.RunID())
}
