package trace

import (
	"strings"

	"github.com/agentsleague/prepeval/internal/models"
)

// Discriminator values and member names used by serialized agent sessions.
const (
	TypeKey            = "$type"
	CallIDKey          = "callId"
	NameKey            = "name"
	ArgumentsKey       = "arguments"
	ResultKey          = "result"
	TypeFunctionCall   = "functionCall"
	TypeFunctionResult = "functionResult"
)

type callRecord struct {
	name      string
	arguments Node
	hasArgs   bool
}

type resultRecord struct {
	outcome Node
}

// ExtractInvokedTools reconstructs the tool calls recorded anywhere in a
// session tree. Calls are returned in the order their call ids were first
// discovered, regardless of where matching results appear. Results without a
// matching call are dropped. Call ids compare case-insensitively.
func ExtractInvokedTools(root Node) []models.InvokedTool {
	var order []string
	calls := make(map[string]callRecord)
	results := make(map[string]resultRecord)

	Walk(root, func(obj Node) {
		typ := memberString(obj, TypeKey)
		callID := memberString(obj, CallIDKey)
		if strings.TrimSpace(callID) == "" {
			return
		}
		key := strings.ToLower(callID)

		switch {
		case strings.EqualFold(typ, TypeFunctionCall):
			name := memberString(obj, NameKey)
			if strings.TrimSpace(name) == "" {
				return
			}
			if _, seen := calls[key]; !seen {
				order = append(order, key)
			}
			args, hasArgs := obj.Get(ArgumentsKey)
			calls[key] = callRecord{name: name, arguments: args, hasArgs: hasArgs}
		case strings.EqualFold(typ, TypeFunctionResult):
			if result, ok := obj.Get(ResultKey); ok {
				results[key] = resultRecord{outcome: result}
			}
		}
	})

	tools := make([]models.InvokedTool, 0, len(order))
	for _, key := range order {
		call, ok := calls[key]
		if !ok {
			continue
		}
		args := call.arguments
		if !call.hasArgs || args.Kind() == KindNull {
			args = Object()
		}
		tool := models.InvokedTool{Tool: call.name, Arguments: args}
		if res, ok := results[key]; ok {
			tool.Outcome = res.outcome
			tool.HasOutcome = true
		}
		tools = append(tools, tool)
	}
	return tools
}

// AvailableTools returns the distinct tool names of tools, compared
// case-insensitively, in first-seen order.
func AvailableTools(tools []models.InvokedTool) []string {
	seen := make(map[string]struct{}, len(tools))
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		if strings.TrimSpace(t.Tool) == "" {
			continue
		}
		key := strings.ToLower(t.Tool)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, t.Tool)
	}
	return names
}

func memberString(obj Node, key string) string {
	v, ok := obj.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.Str()
	return s
}
