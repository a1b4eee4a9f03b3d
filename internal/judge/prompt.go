package judge

import (
	"fmt"
	"strings"
)

const verdictInstructions = `Answer with a JSON object only. Put your step-by-step analysis in "chainOfThought", a short justification in "reasoning" and an integer from 1 to 5 in "score".`

// systemPrompt is the rubric plus the required answer format.
func systemPrompt(m Metric) string {
	var sb strings.Builder
	sb.WriteString("You are an impartial evaluator of an AI study-preparation assistant.\n\n")
	sb.WriteString(m.Rubric)
	sb.WriteString("\n\n")
	if m.Schema == nil {
		sb.WriteString(verdictInstructions)
	} else {
		sb.WriteString("Answer with a JSON object that matches the provided schema.")
	}
	return sb.String()
}

// userPrompt renders each required input as its own section, in the order the
// metric declares them.
func userPrompt(in Input) string {
	var sb strings.Builder
	for i, key := range in.Metric.Required {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "## %s\n", key)
		if in.Metric.isJSONKey(key) {
			fmt.Fprintf(&sb, "```json\n%s\n```", in.Values[key])
		} else {
			sb.WriteString(in.Values[key])
		}
	}
	return sb.String()
}
