package judge

import (
	"context"
	"log/slog"
	"time"

	"github.com/agentsleague/prepeval/internal/models"
)

// Verdict is a judge's answer for one metric.
type Verdict struct {
	EvalName       string
	Score          float64
	ProbScore      float64
	Reasoning      string
	ChainOfThought string
	// Fields holds the complete decoded answer, including metric-specific
	// sub-scores.
	Fields map[string]any
}

// Judge scores one rendered input.
type Judge interface {
	Judge(ctx context.Context, in Input) (Verdict, error)
}

// Adapter turns explain inputs into judge calls and judge verdicts into
// metric results.
type Adapter struct {
	judge Judge
}

func NewAdapter(j Judge) *Adapter {
	return &Adapter{judge: j}
}

// Evaluate judges metric once using the matching payload in explain.
func (a *Adapter) Evaluate(ctx context.Context, metric string, explain map[string]map[string]any) (models.MetricEvaluationResult, error) {
	normalized := NormalizeMetric(metric)
	in, err := BuildInput(explain, normalized)
	if err != nil {
		return models.MetricEvaluationResult{}, err
	}

	start := time.Now()
	v, err := a.judge.Judge(ctx, in)
	if err != nil {
		return models.MetricEvaluationResult{}, err
	}
	slog.Debug("metric judged", "metric", in.Metric.Name, "score", v.Score, "probScore", v.ProbScore, "duration", time.Since(start))

	evalName := v.EvalName
	if evalName == "" {
		evalName = in.Metric.EvalName
	}
	return models.MetricEvaluationResult{
		MetricName:     in.Metric.Name,
		EvalName:       evalName,
		Score:          v.Score,
		ProbScore:      v.ProbScore,
		Reasoning:      v.Reasoning,
		ChainOfThought: v.ChainOfThought,
	}, nil
}
