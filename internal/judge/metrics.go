// Package judge scores agent output along named quality dimensions by asking
// an LLM judge for a structured verdict.
package judge

import (
	"slices"

	"github.com/agentsleague/prepeval/internal/utils"
	"github.com/agentsleague/prepeval/internal/validation"
)

// Metric names understood by the registry.
const (
	Relevance             = "RelevanceExplain"
	Coherence             = "CoherenceExplain"
	PerceivedIntelligence = "PerceivedIntelligenceExplain"
	Fluency               = "FluencyExplain"
	Empathy               = "EmpathyExplain"
	Helpfulness           = "HelpfulnessExplain"
	IntentResolution      = "IntentResolutionExplain"
	ToolCallAccuracy      = "ToolCallAccuracyExplain"
	TaskAdherence         = "TaskAdherenceExplain"

	// CustomPrepEval judges a whole preparation workflow at once.
	CustomPrepEval = "CustomPrepEval"

	perceivedIntelligenceNonRag = "PerceivedIntelligenceNonRagExplain"
)

// Metric describes one judged dimension: the inputs the judge prompt needs and
// the rubric it is given.
type Metric struct {
	Name string
	// EvalName is the judge function reported alongside each verdict.
	EvalName string
	// Required lists the explain-input keys, in prompt order.
	Required []string
	// JSONKeys are rendered as JSON documents rather than plain text.
	JSONKeys []string
	Rubric   string
	Schema   *validation.Schema
}

var registry = []Metric{
	{
		Name:     Relevance,
		EvalName: "Relevance",
		Required: []string{"input", "question", "context"},
		Rubric: `Rate how relevant the answer is to the question, given the context.
5: every part of the answer addresses the question and uses the context correctly.
3: the answer is partly on topic or misses an important aspect of the question.
1: the answer is unrelated to the question.`,
	},
	{
		Name:     Coherence,
		EvalName: "Coherence",
		Required: []string{"input", "question"},
		Rubric: `Rate how coherent the answer is as a whole.
5: ideas are well organized and each part follows logically from the previous one.
3: the answer is understandable but jumps between ideas or repeats itself.
1: the answer is disjointed or self-contradictory.`,
	},
	{
		Name:     PerceivedIntelligence,
		EvalName: "PerceivedIntelligenceNonRag",
		Required: []string{"input", "question"},
		Rubric: `Rate how intelligent the answer appears to a knowledgeable reader, without any retrieved context.
5: insightful, precise and anticipates follow-up needs.
3: correct but generic.
1: shallow, confused or wrong.`,
	},
	{
		Name:     Fluency,
		EvalName: "Fluency",
		Required: []string{"input", "question"},
		Rubric: `Rate the language quality of the answer.
5: grammatical, natural and easy to read.
3: readable with noticeable awkward phrasing or errors.
1: hard to read.`,
	},
	{
		Name:     Empathy,
		EvalName: "Empathy",
		Required: []string{"input", "question"},
		Rubric: `Rate how well the answer recognizes the student's situation and motivation.
5: supportive, encouraging and tailored to the student.
3: neutral and impersonal.
1: dismissive or discouraging.`,
	},
	{
		Name:     Helpfulness,
		EvalName: "Helpfulness",
		Required: []string{"input", "question"},
		Rubric: `Rate how much the answer helps the student act on their request.
5: complete, actionable and specific.
3: somewhat useful but leaves important steps to the student.
1: not useful.`,
	},
	{
		Name:     IntentResolution,
		EvalName: "IntentResolution",
		Required: []string{"input", "question", "relevantContext"},
		Rubric: `Rate how well the answer identifies and resolves the user's underlying intent, using the relevant context.
5: the intent is understood and fully resolved.
3: the intent is understood but only partly resolved.
1: the intent is misunderstood.`,
	},
	{
		Name:     ToolCallAccuracy,
		EvalName: "ToolCallAccuracy",
		Required: []string{"input", "question", "availableTools", "invokedTools"},
		JSONKeys: []string{"availableTools", "invokedTools"},
		Rubric: `Rate whether the agent chose the right tools with the right arguments, given the tools it had available.
5: every needed tool was called with correct arguments and no call was wasted.
3: some calls were missing, redundant or had poor arguments.
1: tool use was wrong or absent when clearly required.`,
	},
	{
		Name:     TaskAdherence,
		EvalName: "TaskAdherence",
		Required: []string{"input", "question", "goal"},
		Rubric: `Rate how closely the answer follows the agent's assigned goal and the constraints in the question.
5: the goal is met and every constraint is respected.
3: the goal is partly met or a constraint is ignored.
1: the answer does not pursue the goal.`,
	},
	{
		Name:     CustomPrepEval,
		EvalName: CustomPrepEval,
		Required: []string{"details", "learningPath", "studyPlan", "studySchedule"},
		JSONKeys: []string{"learningPath", "studyPlan", "studySchedule"},
		Schema:   validation.CustomPrepEval,
		Rubric: `You review the output of a certification preparation workflow for the student request in the details.
Score each artifact from 1 to 5:
- learningPathScore: do the learning paths match the requested topics and exam?
- studyPlanScore: is the week-by-week plan realistic for the weekly hours and duration, and does it cover the curated paths?
- engagementPlanScore: are the reminders timely, specific and aligned with the plan?
Then give an overall score from 1 to 5. Explain your reasoning step by step and cite positive and negative examples from the output.`,
	},
}

// DefaultMetrics is the metric set used when a case names none.
func DefaultMetrics() []string {
	return []string{IntentResolution, TaskAdherence, Relevance, Coherence, Helpfulness}
}

// Names returns every registered metric name in registry order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, m := range registry {
		names = append(names, m.Name)
	}
	return names
}

// Lookup finds a metric by name, ignoring letter case.
func Lookup(name string) (Metric, bool) {
	key := utils.FoldKey(name)
	for _, m := range registry {
		if utils.FoldKey(m.Name) == key {
			return m, true
		}
	}
	return Metric{}, false
}

// NormalizeMetric maps aliases onto their registered metric and returns the
// registered spelling for known names. Unknown names are returned unchanged.
func NormalizeMetric(name string) string {
	if utils.FoldKey(name) == utils.FoldKey(perceivedIntelligenceNonRag) {
		return PerceivedIntelligence
	}
	if m, ok := Lookup(name); ok {
		return m.Name
	}
	return name
}

// verdictSchema returns the output schema the judge answers with.
func (m Metric) verdictSchema() *validation.Schema {
	if m.Schema != nil {
		return m.Schema
	}
	return validation.JudgeVerdict
}

func (m Metric) isJSONKey(key string) bool {
	return slices.Contains(m.JSONKeys, key)
}
