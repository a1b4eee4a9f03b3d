package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentsleague/prepeval/internal/models"
)

// Preparation is the output of one curator, planner and engagement run.
type Preparation struct {
	Request        models.PreparationRequest
	LearningPath   string
	StudyPlan      string
	EngagementPlan string
}

// Prepare runs the preparation stages of the pipeline for req, each stage
// seeing the previous stage's answer.
func (c *Chain) Prepare(ctx context.Context, req models.PreparationRequest) (*Preparation, error) {
	outputs := make(map[Role]string, 3)
	for _, role := range Pipeline[:RoleEngagement.index()+1] {
		prompt, err := c.prompt(role, req, outputs)
		if err != nil {
			return nil, err
		}
		resp, err := c.run(ctx, role, prompt)
		if err != nil {
			return nil, err
		}
		text := strings.TrimSpace(resp.FinalOutput)
		if text == "" {
			return nil, &EmptyResponseError{Agent: string(role), CaseID: "quick"}
		}
		outputs[role] = text
	}
	return &Preparation{
		Request:        req,
		LearningPath:   outputs[RoleCurator],
		StudyPlan:      outputs[RolePlanner],
		EngagementPlan: outputs[RoleEngagement],
	}, nil
}

// Markdown describes the student request for a reviewer.
func (p *Preparation) Markdown() string {
	return fmt.Sprintf(`### Preparation Request
- **Topics:** %s
- **Student email:** %s
- **Weekly hours:** %d
- **Duration (weeks):** %d
`, p.Request.Topics, p.Request.StudentEmail, p.Request.WeeklyHours, p.Request.DurationWeeks)
}

// WorkflowInputs are the inputs of the whole-workflow judge. Stage answers
// that are not valid JSON are passed as null.
func (p *Preparation) WorkflowInputs() map[string]any {
	return map[string]any{
		"details":       p.Markdown(),
		"learningPath":  decodeOrNil(p.LearningPath),
		"studyPlan":     decodeOrNil(p.StudyPlan),
		"studySchedule": decodeOrNil(p.EngagementPlan),
	}
}

func decodeOrNil(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return v
}
