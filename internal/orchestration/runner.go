package orchestration

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/agentsleague/prepeval/internal/agents"
	"github.com/agentsleague/prepeval/internal/config"
	"github.com/agentsleague/prepeval/internal/dataset"
	"github.com/agentsleague/prepeval/internal/judge"
	"github.com/agentsleague/prepeval/internal/models"
	"github.com/agentsleague/prepeval/internal/reporting"
	"github.com/agentsleague/prepeval/internal/scheduler"
	"github.com/agentsleague/prepeval/internal/scoring"
	"github.com/agentsleague/prepeval/internal/utils"
	"github.com/google/uuid"
)

// CaseExecutor runs the agent a case targets.
type CaseExecutor interface {
	Execute(ctx context.Context, item models.DatasetCase) (*models.RuntimeAgentExecution, error)
}

// MetricEvaluator judges one metric against a case's explain inputs.
type MetricEvaluator interface {
	Evaluate(ctx context.Context, metric string, explain map[string]map[string]any) (models.MetricEvaluationResult, error)
}

// EvalRunner replays dataset cases against the agents and scores them.
type EvalRunner struct {
	cfg     *config.RunConfig
	chain   CaseExecutor
	metrics MetricEvaluator
	policy  *scoring.Policy

	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
	runID  string

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// RunnerOption configures an EvalRunner.
type RunnerOption func(*EvalRunner)

// WithPolicy replaces the built-in scoring policy.
func WithPolicy(p *scoring.Policy) RunnerOption {
	return func(r *EvalRunner) {
		r.policy = p
	}
}

// WithOutput redirects console progress and per-case failure lines.
func WithOutput(stdout, stderr io.Writer) RunnerOption {
	return func(r *EvalRunner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithClock sets the time source used for the report timestamp.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *EvalRunner) {
		r.now = now
	}
}

func WithRunID(id string) RunnerOption {
	return func(r *EvalRunner) {
		r.runID = id
	}
}

// NewEvalRunner creates a runner. Without options it prints to the process
// streams, scores with the default policy and picks a random run id.
func NewEvalRunner(cfg *config.RunConfig, chain CaseExecutor, metrics MetricEvaluator, opts ...RunnerOption) *EvalRunner {
	r := &EvalRunner{
		cfg:       cfg,
		chain:     chain,
		metrics:   metrics,
		policy:    scoring.DefaultPolicy(),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		now:       time.Now,
		runID:     uuid.NewString(),
		listeners: []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RunID identifies this run in the report and the run log.
func (r *EvalRunner) RunID() string {
	return r.runID
}

// OnProgress registers a progress listener
func (r *EvalRunner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *EvalRunner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	event.RunID = r.runID
	for _, listener := range listeners {
		listener(event)
	}
}

// LoadCases reads the configured dataset files and applies the case filters.
// An empty result is [dataset.ErrNoCases].
func (r *EvalRunner) LoadCases() ([]models.DatasetCase, error) {
	cases, err := dataset.LoadCases(r.cfg.DatasetFiles(), r.cfg.LoadOptions())
	if err != nil {
		return nil, err
	}
	cases, err = FilterCases(cases, r.cfg.CaseFilters())
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, dataset.ErrNoCases
	}
	return cases, nil
}

// Run loads the dataset and evaluates every case.
func (r *EvalRunner) Run(ctx context.Context) (*models.EvalRunReport, error) {
	cases, err := r.LoadCases()
	if err != nil {
		r.notifyProgress(ProgressEvent{
			EventType: EventRunError,
			Details:   map[string]any{"error": err.Error(), "phase": "load"},
		})
		return nil, err
	}
	return r.Evaluate(ctx, cases)
}

// Evaluate processes cases one at a time in order. A case that fails before
// scoring is recorded as a failed placeholder and the run moves on. When ctx
// is cancelled no further case starts; the report covers the completed cases
// and ctx's error is returned alongside it.
func (r *EvalRunner) Evaluate(ctx context.Context, cases []models.DatasetCase) (*models.EvalRunReport, error) {
	if len(cases) == 0 {
		return nil, dataset.ErrNoCases
	}

	startTime := time.Now()
	fmt.Fprintf(r.stdout, "Loaded %d dataset cases.\n", len(cases))
	fmt.Fprintf(r.stdout, "Metric max concurrency: %d\n", r.cfg.MaxConcurrency())

	r.notifyProgress(ProgressEvent{
		EventType:  EventRunStarted,
		TotalCases: len(cases),
		Details:    map[string]any{"model": r.cfg.Model(), "judge_model": r.cfg.JudgeModel()},
	})

	results := make([]models.CaseEvaluationResult, 0, len(cases))
	var stopErr error
	for i, item := range cases {
		if err := ctx.Err(); err != nil {
			stopErr = err
			break
		}

		fmt.Fprintf(r.stdout, "[%d/%d] Evaluating %s (%s)...\n", i+1, len(cases), item.CaseID, item.AgentName)
		r.notifyProgress(ProgressEvent{
			EventType:  EventCaseStarted,
			CaseID:     item.CaseID,
			AgentName:  item.AgentName,
			CaseNum:    i + 1,
			TotalCases: len(cases),
		})

		caseStart := time.Now()
		result, err := r.evaluateCase(ctx, item)
		result.DurationMs = time.Since(caseStart).Milliseconds()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				// Interrupted mid-case; leave it out of the report.
				stopErr = ctxErr
				break
			}
			fmt.Fprintf(r.stderr, "Case %s failed during runtime input generation/evaluation: %s\n", item.CaseID, err.Error())
			r.notifyProgress(ProgressEvent{
				EventType:  EventCaseFailed,
				CaseID:     item.CaseID,
				AgentName:  item.AgentName,
				CaseNum:    i + 1,
				TotalCases: len(cases),
				DurationMs: result.DurationMs,
				Details:    map[string]any{"error": err.Error()},
			})
		} else {
			r.notifyProgress(ProgressEvent{
				EventType:  EventCaseCompleted,
				CaseID:     item.CaseID,
				AgentName:  item.AgentName,
				CaseNum:    i + 1,
				TotalCases: len(cases),
				Passed:     result.Passed,
				Composite:  result.CompositeScore,
				DurationMs: result.DurationMs,
				Details:    caseResultDetails(result),
			})
		}
		results = append(results, result)
	}

	if stopErr != nil {
		r.notifyProgress(ProgressEvent{
			EventType:  EventRunError,
			TotalCases: len(cases),
			Details:    map[string]any{"error": stopErr.Error(), "phase": "evaluate", "completed_cases": len(results)},
		})
	}

	report := reporting.BuildReport(results, r.runID, r.now())
	r.notifyProgress(ProgressEvent{
		EventType:  EventRunCompleted,
		TotalCases: report.TotalCases,
		DurationMs: time.Since(startTime).Milliseconds(),
		Details: map[string]any{
			"passed":    report.TotalPassed,
			"failed":    report.TotalCases - report.TotalPassed,
			"pass_rate": report.OverallPassRate,
			"stopped":   stopErr != nil,
		},
	})
	return report, stopErr
}

// evaluateCase runs the agent, judges the metrics and scores the result. On
// error the returned result is the failed placeholder for item.
func (r *EvalRunner) evaluateCase(ctx context.Context, item models.DatasetCase) (models.CaseEvaluationResult, error) {
	profileName := strings.TrimSpace(item.ThresholdProfile)
	if profileName == "" {
		profileName = scoring.ProfileDefault
	}
	result := models.CaseEvaluationResult{
		CaseID:           item.CaseID,
		AgentName:        item.AgentName,
		ScenarioID:       item.ScenarioID,
		ThresholdProfile: profileName,
		Metrics:          []models.MetricEvaluationResult{},
	}

	run, err := r.chain.Execute(ctx, item)
	if err != nil {
		result.FailureReason = err.Error()
		return result, err
	}
	explain := agents.BuildExplainInputs(item, run)

	metrics, err := scheduler.Run(ctx, metricNames(item), r.cfg.MaxConcurrency(),
		func(ctx context.Context, name string) (models.MetricEvaluationResult, error) {
			return r.metrics.Evaluate(ctx, name, explain)
		})
	if err != nil {
		result.FailureReason = err.Error()
		return result, err
	}

	outcome := r.policy.Evaluate(metrics, r.policy.Resolve(profileName))
	result.CompositeScore = outcome.Composite
	result.Passed = outcome.Passed
	result.FailureReason = outcome.FailureReason
	result.Metrics = metrics
	return result, nil
}

// metricNames returns the case's required metrics, or the default set when
// it names none. Names are normalized and repeated names dropped, ignoring
// letter case.
func metricNames(item models.DatasetCase) []string {
	requested := item.RequiredEvals
	if len(requested) == 0 {
		requested = judge.DefaultMetrics()
	}

	seen := make(map[string]bool, len(requested))
	names := make([]string, 0, len(requested))
	for _, name := range requested {
		name = judge.NormalizeMetric(name)
		key := utils.FoldKey(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}

// caseResultDetails extracts the per-metric scores for inclusion in
// EventCaseCompleted Details.
func caseResultDetails(result models.CaseEvaluationResult) map[string]any {
	scores := make(map[string]float64, len(result.Metrics))
	for _, m := range result.Metrics {
		scores[m.MetricName] = m.Score
	}
	details := map[string]any{"scores": scores}
	if result.FailureReason != "" {
		details["failure_reason"] = result.FailureReason
	}
	return details
}
