package execution

import (
	"encoding/json"
	"fmt"

	"github.com/agentsleague/prepeval/internal/trace"
)

// sessionTranscript records a conversation in the serialized session shape:
// messages carry content items tagged with "$type", and tool traffic appears
// as functionCall / functionResult items correlated by callId.
type sessionTranscript struct {
	role     string
	messages []trace.Node
}

func newSessionTranscript(role string) *sessionTranscript {
	return &sessionTranscript{role: role}
}

func (s *sessionTranscript) addText(author, text string) {
	s.add(author, trace.Object(
		trace.Field(trace.TypeKey, trace.String("text")),
		trace.Field("text", trace.String(text)),
	))
}

func (s *sessionTranscript) addCall(callID, name, arguments string) {
	args := trace.Object()
	if arguments != "" {
		parsed, err := trace.Parse([]byte(arguments))
		if err != nil {
			parsed = trace.String(arguments)
		}
		args = parsed
	}
	s.add("assistant", trace.Object(
		trace.Field(trace.TypeKey, trace.String(trace.TypeFunctionCall)),
		trace.Field(trace.CallIDKey, trace.String(callID)),
		trace.Field(trace.NameKey, trace.String(name)),
		trace.Field(trace.ArgumentsKey, args),
	))
}

func (s *sessionTranscript) addResult(callID string, result any) {
	node, err := trace.FromValue(result)
	if err != nil {
		node = trace.String(fmt.Sprint(result))
	}
	s.add("tool", trace.Object(
		trace.Field(trace.TypeKey, trace.String(trace.TypeFunctionResult)),
		trace.Field(trace.CallIDKey, trace.String(callID)),
		trace.Field(trace.ResultKey, node),
	))
}

func (s *sessionTranscript) add(author string, content trace.Node) {
	s.messages = append(s.messages, trace.Object(
		trace.Field("role", trace.String(author)),
		trace.Field("contents", trace.Array(content)),
	))
}

// Node returns the session document.
func (s *sessionTranscript) Node() trace.Node {
	return trace.Object(
		trace.Field("agent", trace.String(s.role)),
		trace.Field("messages", trace.Array(s.messages...)),
	)
}

// toolContent renders a tool result as the text sent back to the model.
func toolContent(result any, err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	if s, ok := result.(string); ok {
		return s
	}
	data, mErr := json.Marshal(result)
	if mErr != nil {
		return fmt.Sprint(result)
	}
	return string(data)
}
