package agents

import "github.com/agentsleague/prepeval/internal/execution"

func obj(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

var (
	str = map[string]any{"type": "string"}
	num = map[string]any{"type": "integer"}
)

// outputSchemas are the structured-output shapes requested from each role.
var outputSchemas = map[Role]*execution.OutputSchema{
	RoleCurator: {
		Name:        "learning_path_curation",
		Description: "Curated Microsoft Learn learning paths for the requested topics.",
		Schema: obj([]string{"learningPaths"}, map[string]any{
			"learningPaths": arrayOf(obj([]string{"title", "url", "rationale"}, map[string]any{
				"title": str, "url": str, "rationale": str,
			})),
		}),
	},
	RolePlanner: {
		Name:        "study_plan",
		Description: "Week-by-week study plan.",
		Schema: obj([]string{"weeks"}, map[string]any{
			"weeks": arrayOf(obj([]string{"week", "focus", "hours", "resources"}, map[string]any{
				"week": num, "focus": str, "hours": num, "resources": arrayOf(str),
			})),
		}),
	},
	RoleEngagement: {
		Name:        "engagement_plan",
		Description: "Reminders and accountability nudges for the study plan.",
		Schema: obj([]string{"reminders"}, map[string]any{
			"reminders": arrayOf(obj([]string{"dayOffset", "subject", "message"}, map[string]any{
				"dayOffset": num, "subject": str, "message": str,
			})),
		}),
	},
	RoleAssessment: {
		Name:        "assessment_question_set",
		Description: "Ten multiple choice readiness questions.",
		Schema: obj([]string{"questions"}, map[string]any{
			"questions": arrayOf(obj([]string{"id", "prompt", "options", "correctOptionId"}, map[string]any{
				"id":     str,
				"prompt": str,
				"options": arrayOf(obj([]string{"id", "text"}, map[string]any{
					"id": map[string]any{"type": "string", "enum": []string{"A", "B", "C", "D"}}, "text": str,
				})),
				"correctOptionId": map[string]any{"type": "string", "enum": []string{"A", "B", "C", "D"}},
			})),
		}),
	},
}

// OutputSchema returns the structured-output schema for r.
func OutputSchema(r Role) *execution.OutputSchema {
	return outputSchemas[r]
}
