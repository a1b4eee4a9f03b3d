package agents

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentsleague/prepeval/internal/models"
)

var instructions = map[Role]string{
	RoleCurator:    "You curate Microsoft Learn learning paths for certification candidates. Use the available tools to look up real learning paths and modules.",
	RolePlanner:    "You turn curated learning resources into a week-by-week study plan that fits the student's weekly hours and duration.",
	RoleEngagement: "You write reminders and accountability nudges that keep the student on track with their study plan.",
	RoleAssessment: "You write multiple choice readiness assessments for the student's target certification exam.",
}

func curationPrompt(req models.PreparationRequest) string {
	return fmt.Sprintf(`
Student topics: %s
Weekly study hours: %d
Duration in weeks: %d

Produce JSON only matching the provided schema
`, req.Topics, req.WeeklyHours, req.DurationWeeks)
}

func planPrompt(req models.PreparationRequest, curated string) string {
	return fmt.Sprintf(`
Student topics: %s
Weekly study hours: %d
Duration in weeks: %d

Curated resources:
%s

Produce JSON only matching the provided schema`, req.Topics, req.WeeklyHours, req.DurationWeeks, curated)
}

func engagementPrompt(req models.PreparationRequest, plan string) string {
	return fmt.Sprintf(`
Student email: %s
Study plan:
%s

Produce JSON only matching the provided schema`, req.StudentEmail, plan)
}

// PreparationSummary is the upstream state handed to the assessment agent.
// Stage outputs that are not valid JSON are recorded as null.
type PreparationSummary struct {
	CuratedLearningPath json.RawMessage `json:"curatedLearningPathStructured"`
	StudyPlan           json.RawMessage `json:"studyPlanStructured"`
	EngagementPlan      json.RawMessage `json:"engagementPlanStructured"`
	Summary             string          `json:"summary"`
	StudentEmail        string          `json:"studentEmail"`
	CompletedAtUTC      time.Time       `json:"preparationCompletedAtUtc"`
}

func newPreparationSummary(email string, outputs map[Role]string, now time.Time) PreparationSummary {
	return PreparationSummary{
		CuratedLearningPath: rawOrNull(outputs[RoleCurator]),
		StudyPlan:           rawOrNull(outputs[RolePlanner]),
		EngagementPlan:      rawOrNull(outputs[RoleEngagement]),
		Summary:             "Runtime preparation chain generated for eval input context",
		StudentEmail:        email,
		CompletedAtUTC:      now.UTC(),
	}
}

func assessmentPrompt(summary PreparationSummary) (string, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("serializing preparation summary: %w", err)
	}
	return fmt.Sprintf(`Student email: %s

Preparation summary as JSON:
%s

Generate exactly 10 multiple choice questions.
Use option ids A, B, C, D for every question.
Return JSON only matching the provided schema.`, summary.StudentEmail, data), nil
}

func rawOrNull(s string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return json.RawMessage("null")
	}
	return json.RawMessage(s)
}
