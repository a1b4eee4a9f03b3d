package utils

import (
	"context"
	"log/slog"
)

// AgentCall describes one agent invocation for debug logging.
type AgentCall struct {
	Role       string
	Model      string
	DurationMs int64
	ToolCalls  int
	Output     *string
	Error      *string
}

func AgentCallToSlog(call AgentCall) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	attrs := []any{
		"role", call.Role,
		"model", call.Model,
		"durationMs", call.DurationMs,
		"toolCalls", call.ToolCalls,
	}

	attrs = addIf(attrs, "output", call.Output)
	attrs = addIf(attrs, "error", call.Error)

	slog.Debug("Agent call completed", attrs...)
}

func addIf[T any](attrs []any, name string, v *T) []any {
	if v != nil {
		attrs = append(attrs, name)
		attrs = append(attrs, *v)
	}

	return attrs
}
