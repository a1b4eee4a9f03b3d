// Package agents replays dataset cases against the study-preparation agent
// pipeline (curator, planner, engagement, assessment).
package agents

import (
	"strings"
)

// Role is one agent of the preparation pipeline.
type Role string

const (
	RoleCurator    Role = "learning-path-curator"
	RolePlanner    Role = "study-plan-generator"
	RoleEngagement Role = "engagement-agent"
	RoleAssessment Role = "readiness-assessment-agent"
)

// Pipeline lists the roles in the order the production workflow runs them.
// Each role consumes the outputs of the roles before it.
var Pipeline = []Role{RoleCurator, RolePlanner, RoleEngagement, RoleAssessment}

var goals = map[Role]string{
	RoleCurator:    "Suggest the most relevant Microsoft Learn learning paths for the student's requested topics.",
	RolePlanner:    "Convert curated resources into a realistic week-by-week study plan.",
	RoleEngagement: "Generate reminders and accountability nudges aligned to the study plan.",
	RoleAssessment: "Generate an assessment that evaluates readiness for the target certification exam.",
}

// DefaultGoal is used for agents without a registered goal.
const DefaultGoal = "Answer the student request correctly and completely."

// ResolveRole matches an agent name against the known roles. Matching is
// exact apart from letter case.
func ResolveRole(agentName string) (Role, bool) {
	for _, r := range Pipeline {
		if strings.EqualFold(agentName, string(r)) {
			return r, true
		}
	}
	return "", false
}

// Goal returns the task goal judged by task adherence for agentName.
func Goal(agentName string) string {
	if r, ok := ResolveRole(agentName); ok {
		return goals[r]
	}
	return DefaultGoal
}

func (r Role) index() int {
	for i, p := range Pipeline {
		if p == r {
			return i
		}
	}
	return -1
}
