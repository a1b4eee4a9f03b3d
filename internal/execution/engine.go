package execution

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agentsleague/prepeval/internal/models"
	"github.com/agentsleague/prepeval/internal/trace"
)

// AgentEngine is the interface for invoking an agent once
type AgentEngine interface {
	// Initialize sets up the engine
	Initialize(ctx context.Context) error

	// Execute sends one prompt to the agent and waits for its final answer
	Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResponse, error)

	// Shutdown cleans up resources
	Shutdown(ctx context.Context) error
}

// OutputSchema is the structured-output shape requested from the agent.
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any
}

// ToolDefinition describes a tool the agent may call.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Toolset supplies tools to an agent. Implementations wrap the external
// content services the agents rely on.
type Toolset interface {
	Definitions() []ToolDefinition
	Invoke(ctx context.Context, name string, arguments json.RawMessage) (any, error)
}

// ExecutionRequest represents one agent invocation
type ExecutionRequest struct {
	// Role is the logical agent being invoked (e.g. "learning-path-curator").
	Role         string
	Instructions string
	Message      string
	ModelID      string
	OutputSchema *OutputSchema
	Tools        Toolset
	Timeout      time.Duration
}

// ExecutionResponse represents the result of an execution
type ExecutionResponse struct {
	FinalOutput string
	// Session is the serialized conversation, including any function call and
	// function result records.
	Session    trace.Node
	ModelID    string
	DurationMs int64
	ErrorMsg   string
	Success    bool
}

// InvokedTools reconstructs the tool calls recorded in the session.
func (r *ExecutionResponse) InvokedTools() []models.InvokedTool {
	return trace.ExtractInvokedTools(r.Session)
}
