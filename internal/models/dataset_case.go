package models

// DatasetCase is one recorded scenario replayed against an agent.
type DatasetCase struct {
	CaseID           string                    `json:"case_id"`
	ScenarioID       string                    `json:"scenario_id"`
	AgentName        string                    `json:"agent_name"`
	WorkflowMode     string                    `json:"workflow_mode"`
	ThresholdProfile string                    `json:"threshold_profile"`
	RequiredEvals    []string                  `json:"required_evals"`
	Question         string                    `json:"question"`
	ExplainInputs    map[string]map[string]any `json:"explain_inputs,omitempty"`

	// SourceFile is the dataset file the case was read from.
	SourceFile string `json:"-"`
}

// PreparationRequest holds the study parameters recovered from a case question.
type PreparationRequest struct {
	Topics        string `json:"topics"`
	StudentEmail  string `json:"studentEmail"`
	WeeklyHours   int    `json:"weeklyHours"`
	DurationWeeks int    `json:"durationWeeks"`
}

// RuntimeAgentExecution is what the resolved agent produced for a case.
type RuntimeAgentExecution struct {
	Question       string
	ResponseText   string
	AvailableTools []string
	InvokedTools   []InvokedTool
}
