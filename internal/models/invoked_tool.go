package models

import "encoding/json"

// InvokedTool is one tool call reconstructed from a session trace, paired
// with its result when one was recorded.
type InvokedTool struct {
	Tool      string
	Arguments any
	Outcome   any
	// HasOutcome distinguishes a recorded null outcome from a missing one.
	HasOutcome bool
}

func (t InvokedTool) MarshalJSON() ([]byte, error) {
	args := t.Arguments
	if args == nil {
		args = map[string]any{}
	}
	if !t.HasOutcome {
		return json.Marshal(struct {
			Tool      string `json:"tool"`
			Arguments any    `json:"arguments"`
		}{t.Tool, args})
	}
	return json.Marshal(struct {
		Tool      string `json:"tool"`
		Arguments any    `json:"arguments"`
		Outcome   any    `json:"outcome"`
	}{t.Tool, args, t.Outcome})
}

func (t *InvokedTool) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = InvokedTool{}
	if v, ok := raw["tool"]; ok {
		if err := json.Unmarshal(v, &t.Tool); err != nil {
			return err
		}
	}
	if v, ok := raw["arguments"]; ok {
		if err := json.Unmarshal(v, &t.Arguments); err != nil {
			return err
		}
	}
	if v, ok := raw["outcome"]; ok {
		t.HasOutcome = true
		if err := json.Unmarshal(v, &t.Outcome); err != nil {
			return err
		}
	}
	return nil
}
