package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agentsleague/prepeval/internal/execution"
	"github.com/agentsleague/prepeval/internal/models"
	"github.com/agentsleague/prepeval/internal/trace"
	"github.com/agentsleague/prepeval/internal/utils"
)

// Chain runs the agent a case targets, first replaying every upstream role
// so the target sees the same kind of input it gets in production.
type Chain struct {
	engine   execution.AgentEngine
	modelID  string
	timeout  time.Duration
	toolsets map[Role]execution.Toolset
	now      func() time.Time
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

func WithModel(modelID string) ChainOption {
	return func(c *Chain) { c.modelID = modelID }
}

func WithTimeout(d time.Duration) ChainOption {
	return func(c *Chain) { c.timeout = d }
}

// WithToolset gives role access to tools.
func WithToolset(role Role, tools execution.Toolset) ChainOption {
	return func(c *Chain) { c.toolsets[role] = tools }
}

// WithClock overrides the time source used for preparation summaries.
func WithClock(now func() time.Time) ChainOption {
	return func(c *Chain) { c.now = now }
}

func NewChain(engine execution.AgentEngine, opts ...ChainOption) *Chain {
	c := &Chain{
		engine:   engine,
		toolsets: map[Role]execution.Toolset{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs the agent targeted by item and returns its answer with the
// tool calls reconstructed from its session. Upstream agents are awaited one
// at a time.
func (c *Chain) Execute(ctx context.Context, item models.DatasetCase) (*models.RuntimeAgentExecution, error) {
	target, ok := ResolveRole(item.AgentName)
	if !ok {
		return nil, &UnsupportedAgentError{Agent: item.AgentName, CaseID: item.CaseID}
	}

	var (
		prompt string
		resp   *execution.ExecutionResponse
		err    error
	)

	if target == RoleCurator {
		prompt = item.Question
		resp, err = c.run(ctx, RoleCurator, prompt)
		if err != nil {
			return nil, err
		}
	} else {
		req := ParseRequest(item)
		outputs := make(map[Role]string, len(Pipeline))
		for _, role := range Pipeline[:target.index()+1] {
			prompt, err = c.prompt(role, req, outputs)
			if err != nil {
				return nil, err
			}
			resp, err = c.run(ctx, role, prompt)
			if err != nil {
				return nil, err
			}
			outputs[role] = strings.TrimSpace(resp.FinalOutput)
		}
	}

	text := strings.TrimSpace(resp.FinalOutput)
	if text == "" {
		return nil, &EmptyResponseError{Agent: item.AgentName, CaseID: item.CaseID}
	}

	invoked := trace.ExtractInvokedTools(resp.Session)
	return &models.RuntimeAgentExecution{
		Question:       prompt,
		ResponseText:   text,
		AvailableTools: trace.AvailableTools(invoked),
		InvokedTools:   invoked,
	}, nil
}

func (c *Chain) prompt(role Role, req models.PreparationRequest, outputs map[Role]string) (string, error) {
	switch role {
	case RoleCurator:
		return curationPrompt(req), nil
	case RolePlanner:
		return planPrompt(req, outputs[RoleCurator]), nil
	case RoleEngagement:
		return engagementPrompt(req, outputs[RolePlanner]), nil
	case RoleAssessment:
		return assessmentPrompt(newPreparationSummary(req.StudentEmail, outputs, c.now()))
	default:
		return "", fmt.Errorf("no prompt for role %q", role)
	}
}

func (c *Chain) run(ctx context.Context, role Role, prompt string) (*execution.ExecutionResponse, error) {
	start := time.Now()
	resp, err := c.engine.Execute(ctx, &execution.ExecutionRequest{
		Role:         string(role),
		Instructions: instructions[role],
		Message:      prompt,
		ModelID:      c.modelID,
		OutputSchema: OutputSchema(role),
		Tools:        c.toolsets[role],
		Timeout:      c.timeout,
	})
	if err != nil {
		msg := err.Error()
		utils.AgentCallToSlog(utils.AgentCall{Role: string(role), Model: c.modelID, DurationMs: time.Since(start).Milliseconds(), Error: &msg})
		return nil, fmt.Errorf("running %s: %w", role, err)
	}
	utils.AgentCallToSlog(utils.AgentCall{
		Role:       string(role),
		Model:      resp.ModelID,
		DurationMs: time.Since(start).Milliseconds(),
		ToolCalls:  len(resp.InvokedTools()),
		Output:     &resp.FinalOutput,
	})
	return resp, nil
}
