package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/agentsleague/prepeval/internal/cache"
	"github.com/agentsleague/prepeval/internal/execution"
	"github.com/agentsleague/prepeval/internal/judge"
	"github.com/agentsleague/prepeval/internal/llm"
	"github.com/agentsleague/prepeval/internal/projectconfig"
	"github.com/agentsleague/prepeval/internal/ratelimit"
)

// Engine types accepted by --engine.
const (
	engineOpenAI = "openai"
	engineMock   = "mock"

	mockModel      = "mock-model"
	mockJudgeScore = 4.0
)

// backendOptions are the command-line choices that shape the agent engine
// and the judge.
type backendOptions struct {
	engine     string
	model      string
	judgeModel string
	noCache    bool
}

// backends is the resolved agent engine and judge for one command.
type backends struct {
	engine     execution.AgentEngine
	judge      judge.Judge
	model      string
	judgeModel string
}

// buildBackends creates the agent engine and the judge. The mock engine needs
// no endpoint; every other engine reads its endpoint from pc and getenv.
func buildBackends(pc *projectconfig.ProjectConfig, opts backendOptions, getenv func(string) string) (*backends, error) {
	model := opts.model
	if model == "" {
		model = pc.ResolveModel(getenv)
	}
	judgeModel := opts.judgeModel
	if judgeModel == "" {
		judgeModel = pc.ResolveJudgeModel(getenv)
	}

	switch strings.ToLower(opts.engine) {
	case engineMock:
		if model == "" {
			model = mockModel
		}
		if judgeModel == "" {
			judgeModel = model
		}
		return &backends{
			engine:     execution.NewMockEngine(model),
			judge:      judge.NewStubJudge(mockJudgeScore),
			model:      model,
			judgeModel: judgeModel,
		}, nil
	case "", engineOpenAI:
	default:
		return nil, fmt.Errorf("unknown engine type: %s (supported: %s, %s)", opts.engine, engineOpenAI, engineMock)
	}

	ep, err := pc.ResolveEndpoint(getenv)
	if err != nil {
		return nil, err
	}
	if model == "" {
		return nil, fmt.Errorf("%w: set %s or pass --model", projectconfig.ErrMissingEndpoint, pc.Endpoint.DeploymentEnv)
	}
	if judgeModel == "" {
		judgeModel = model
	}

	client, err := llm.NewChatClient(ep)
	if err != nil {
		return nil, fmt.Errorf("creating chat client: %w", err)
	}

	// One limiter paces agent and judge calls against the shared endpoint.
	limiter := ratelimit.New(pc.Judge.RequestsPerSecond, pc.Judge.Burst)

	builder := execution.NewOpenAIEngineBuilder(model, client).
		WithLimiter(limiter).
		WithMaxToolTurns(pc.Defaults.MaxToolTurns)
	if t := pc.Defaults.Temperature; t != nil {
		builder = builder.WithTemperature(*t)
	}
	engine := builder.Build()

	topLogprobs := pc.Judge.TopLogprobs
	if pc.Judge.Logprobs != nil && !*pc.Judge.Logprobs {
		topLogprobs = 0
	}
	var j judge.Judge = judge.NewOpenAIJudge(client, judgeModel,
		judge.WithLimiter(limiter),
		judge.WithLogprobs(topLogprobs),
	)

	cacheEnabled := pc.Judge.Cache.Enabled != nil && *pc.Judge.Cache.Enabled
	if cacheEnabled && !opts.noCache {
		dir, err := filepath.Abs(pc.Judge.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("resolving cache directory: %w", err)
		}
		j = judge.NewCachedJudge(j, judgeModel, cache.New(dir))
		slog.Debug("judge cache enabled", "dir", dir)
	}

	return &backends{
		engine:     engine,
		judge:      j,
		model:      model,
		judgeModel: judgeModel,
	}, nil
}
