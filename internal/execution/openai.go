package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentsleague/prepeval/internal/llm"
	"github.com/agentsleague/prepeval/internal/ratelimit"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// DefaultMaxToolTurns bounds the call/result round trips of one invocation.
const DefaultMaxToolTurns = 8

// OpenAIEngine runs agents as chat completions with structured output and an
// optional tool loop.
type OpenAIEngine struct {
	defaultModelID string
	client         llm.ChatClient
	limiter        *ratelimit.Limiter
	maxToolTurns   int
	temperature    *float64
}

// OpenAIEngineBuilder builds an OpenAIEngine with options
type OpenAIEngineBuilder struct {
	engine *OpenAIEngine
}

// NewOpenAIEngineBuilder creates a builder for OpenAIEngine
//   - defaultModelID - used when a request does not name a model.
func NewOpenAIEngineBuilder(defaultModelID string, client llm.ChatClient) *OpenAIEngineBuilder {
	return &OpenAIEngineBuilder{
		engine: &OpenAIEngine{
			defaultModelID: defaultModelID,
			client:         client,
			maxToolTurns:   DefaultMaxToolTurns,
		},
	}
}

// WithLimiter shares a rate limiter with other clients of the same backend.
func (b *OpenAIEngineBuilder) WithLimiter(l *ratelimit.Limiter) *OpenAIEngineBuilder {
	b.engine.limiter = l
	return b
}

func (b *OpenAIEngineBuilder) WithMaxToolTurns(n int) *OpenAIEngineBuilder {
	if n > 0 {
		b.engine.maxToolTurns = n
	}
	return b
}

func (b *OpenAIEngineBuilder) WithTemperature(t float64) *OpenAIEngineBuilder {
	b.engine.temperature = &t
	return b
}

func (b *OpenAIEngineBuilder) Build() *OpenAIEngine {
	return b.engine
}

// Initialize checks that the engine is usable
func (e *OpenAIEngine) Initialize(ctx context.Context) error {
	if e.client == nil {
		return fmt.Errorf("openai engine has no chat client")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Execute sends req.Message to the model, running requested tools until the
// model produces a final answer.
func (e *OpenAIEngine) Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to OpenAIEngine.Execute")
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = e.defaultModelID
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	start := time.Now()
	transcript := newSessionTranscript(req.Role)

	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	messages = append(messages, openai.UserMessage(req.Message))
	transcript.addText("user", req.Message)

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(modelID),
		Messages: messages,
	}
	if e.temperature != nil {
		params.Temperature = openai.Float(*e.temperature)
	}
	if req.OutputSchema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.OutputSchema.Name,
					Description: openai.String(req.OutputSchema.Description),
					Schema:      req.OutputSchema.Schema,
				},
			},
		}
	}
	if req.Tools != nil {
		params.Tools = toolParams(req.Tools.Definitions())
	}

	for turn := 0; turn < e.maxToolTurns; turn++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		completion, err := e.client.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("agent %s: chat completion failed: %w", req.Role, err)
		}
		choice, err := llm.FirstChoice(completion)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", req.Role, err)
		}
		msg := choice.Message

		if len(msg.ToolCalls) == 0 || req.Tools == nil {
			transcript.addText("assistant", msg.Content)
			resolvedModel := completion.Model
			if resolvedModel == "" {
				resolvedModel = modelID
			}
			resp := &ExecutionResponse{
				FinalOutput: msg.Content,
				Session:     transcript.Node(),
				ModelID:     resolvedModel,
				DurationMs:  time.Since(start).Milliseconds(),
				Success:     true,
			}
			slog.Debug("Agent completed", "role", req.Role, "model", resp.ModelID, "turns", turn+1, "durationMs", resp.DurationMs)
			return resp, nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		for _, call := range msg.ToolCalls {
			transcript.addCall(call.ID, call.Function.Name, call.Function.Arguments)
			result, invokeErr := req.Tools.Invoke(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			if invokeErr != nil {
				slog.Debug("Tool call failed", "role", req.Role, "tool", call.Function.Name, "error", invokeErr)
				transcript.addResult(call.ID, map[string]any{"error": invokeErr.Error()})
			} else {
				transcript.addResult(call.ID, result)
			}
			params.Messages = append(params.Messages, openai.ToolMessage(toolContent(result, invokeErr), call.ID))
		}
	}

	return nil, fmt.Errorf("agent %s: no final answer after %d tool turns", req.Role, e.maxToolTurns)
}

// Shutdown releases nothing; the HTTP client is shared.
func (e *OpenAIEngine) Shutdown(ctx context.Context) error {
	return nil
}

func toolParams(defs []ToolDefinition) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        d.Name,
				Description: openai.String(d.Description),
				Parameters:  shared.FunctionParameters(d.Parameters),
			},
		})
	}
	return params
}
