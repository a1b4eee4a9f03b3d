package agents

import (
	"fmt"
	"strings"

	"github.com/agentsleague/prepeval/internal/models"
)

// ExplainInputs maps a metric name to the inputs its judge needs.
type ExplainInputs map[string]map[string]any

// Lookup finds the payload for metric, ignoring letter case.
func (e ExplainInputs) Lookup(metric string) (map[string]any, bool) {
	if p, ok := e[metric]; ok {
		return p, true
	}
	for name, p := range e {
		if strings.EqualFold(name, metric) {
			return p, true
		}
	}
	return nil, false
}

// CaseContext is the scenario description given to context-aware judges.
func CaseContext(item models.DatasetCase) string {
	if strings.TrimSpace(item.ScenarioID) == "" {
		return fmt.Sprintf("Agent: %s.", item.AgentName)
	}
	return fmt.Sprintf("Scenario %s for agent %s.", item.ScenarioID, item.AgentName)
}

// BuildExplainInputs assembles the judge inputs for every supported metric
// from a runtime execution. Inputs recorded in the dataset fill keys the
// runtime does not produce; runtime values win on collisions.
func BuildExplainInputs(item models.DatasetCase, run *models.RuntimeAgentExecution) ExplainInputs {
	caseCtx := CaseContext(item)
	goal := Goal(item.AgentName)
	base := func(extra map[string]any) map[string]any {
		p := map[string]any{
			"input":    run.ResponseText,
			"question": run.Question,
		}
		for k, v := range extra {
			p[k] = v
		}
		return p
	}

	inputs := ExplainInputs{
		"RelevanceExplain":             base(map[string]any{"context": caseCtx}),
		"CoherenceExplain":             base(nil),
		"PerceivedIntelligenceExplain": base(map[string]any{"context": caseCtx, "rag_mode": "non-rag"}),
		"FluencyExplain":               base(nil),
		"EmpathyExplain":               base(nil),
		"HelpfulnessExplain":           base(nil),
		"IntentResolutionExplain":      base(map[string]any{"relevantContext": caseCtx}),
		"ToolCallAccuracyExplain": base(map[string]any{
			"availableTools": run.AvailableTools,
			"invokedTools":   run.InvokedTools,
		}),
		"TaskAdherenceExplain": base(map[string]any{"goal": goal}),
	}

	for metric, recorded := range item.ExplainInputs {
		payload, ok := inputs.Lookup(metric)
		if !ok {
			payload = map[string]any{}
			inputs[metric] = payload
		}
		for k, v := range recorded {
			if !hasKey(payload, k) {
				payload[k] = v
			}
		}
	}
	return inputs
}

func hasKey(m map[string]any, key string) bool {
	for k := range m {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}
