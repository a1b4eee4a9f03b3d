package judge

import (
	"context"
	"log/slog"

	"github.com/agentsleague/prepeval/internal/cache"
	"github.com/agentsleague/prepeval/internal/models"
)

// CachedJudge answers repeated inputs from a verdict cache and forwards the
// rest to the wrapped judge.
type CachedJudge struct {
	inner Judge
	model string
	cache *cache.Cache
}

// NewCachedJudge wraps inner. model is part of every cache key, so verdicts
// from different judge models never mix.
func NewCachedJudge(inner Judge, model string, c *cache.Cache) *CachedJudge {
	return &CachedJudge{inner: inner, model: model, cache: c}
}

func (j *CachedJudge) Judge(ctx context.Context, in Input) (Verdict, error) {
	key, err := cache.CacheKey(j.model, in.Metric.Name, in.Values)
	if err != nil {
		return j.inner.Judge(ctx, in)
	}

	if hit, ok := j.cache.Get(key); ok {
		slog.Debug("judge cache hit", "metric", in.Metric.Name, "key", key)
		return Verdict{
			EvalName:       hit.EvalName,
			Score:          hit.Score,
			ProbScore:      hit.ProbScore,
			Reasoning:      hit.Reasoning,
			ChainOfThought: hit.ChainOfThought,
		}, nil
	}

	v, err := j.inner.Judge(ctx, in)
	if err != nil {
		return Verdict{}, err
	}
	entry := &models.MetricEvaluationResult{
		MetricName:     in.Metric.Name,
		EvalName:       v.EvalName,
		Score:          v.Score,
		ProbScore:      v.ProbScore,
		Reasoning:      v.Reasoning,
		ChainOfThought: v.ChainOfThought,
	}
	if err := j.cache.Put(key, entry); err != nil {
		slog.Warn("failed to cache judge verdict", "metric", in.Metric.Name, "error", err)
	}
	return v, nil
}
