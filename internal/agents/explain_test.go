package agents

import (
	"testing"

	"github.com/agentsleague/prepeval/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExplainInputs(t *testing.T) {
	item := models.DatasetCase{
		CaseID:    "c-1",
		AgentName: "engagement-agent",
		ExplainInputs: map[string]map[string]any{
			"coherenceexplain": {"input": "dataset input is ignored", "extra": "kept"},
			"CustomPrepEval":   {"details": "topics"},
		},
	}
	run := &models.RuntimeAgentExecution{
		Question:       "q",
		ResponseText:   "answer",
		AvailableTools: []string{"t"},
		InvokedTools:   []models.InvokedTool{{Tool: "t"}},
	}

	inputs := BuildExplainInputs(item, run)

	relevance, ok := inputs.Lookup("RelevanceExplain")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"input": "answer", "question": "q", "context": "Agent: engagement-agent."}, relevance)

	task, _ := inputs.Lookup("taskadherenceexplain")
	assert.Equal(t, goals[RoleEngagement], task["goal"])

	tools, _ := inputs.Lookup("ToolCallAccuracyExplain")
	assert.Equal(t, []string{"t"}, tools["availableTools"])
	assert.Equal(t, run.InvokedTools, tools["invokedTools"])

	coherence, _ := inputs.Lookup("CoherenceExplain")
	assert.Equal(t, "answer", coherence["input"])
	assert.Equal(t, "kept", coherence["extra"])

	custom, ok := inputs.Lookup("CustomPrepEval")
	require.True(t, ok)
	assert.Equal(t, "topics", custom["details"])

	_, ok = inputs.Lookup("NoSuchMetric")
	assert.False(t, ok)
}

func TestCaseContext(t *testing.T) {
	assert.Equal(t, "Scenario s-1 for agent planner.", CaseContext(models.DatasetCase{ScenarioID: "s-1", AgentName: "planner"}))
	assert.Equal(t, "Agent: planner.", CaseContext(models.DatasetCase{AgentName: "planner"}))
}
