package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agentsleague/prepeval/internal/llm"
	"github.com/agentsleague/prepeval/internal/ratelimit"
	"github.com/go-viper/mapstructure/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// DefaultTopLogprobs is how many alternatives are requested per token.
const DefaultTopLogprobs = 5

// OpenAIJudge asks a chat model for a JSON verdict.
type OpenAIJudge struct {
	client      llm.ChatClient
	model       string
	limiter     *ratelimit.Limiter
	logprobs    bool
	topLogprobs int
}

// OpenAIJudgeOption configures an OpenAIJudge.
type OpenAIJudgeOption func(*OpenAIJudge)

// WithLimiter paces judge calls.
func WithLimiter(l *ratelimit.Limiter) OpenAIJudgeOption {
	return func(j *OpenAIJudge) { j.limiter = l }
}

// WithLogprobs requests token log probabilities so ProbScore reflects the
// judge's confidence. n <= 0 disables them.
func WithLogprobs(n int) OpenAIJudgeOption {
	return func(j *OpenAIJudge) {
		j.logprobs = n > 0
		j.topLogprobs = n
	}
}

func NewOpenAIJudge(client llm.ChatClient, model string, opts ...OpenAIJudgeOption) *OpenAIJudge {
	j := &OpenAIJudge{
		client:      client,
		model:       model,
		logprobs:    true,
		topLogprobs: DefaultTopLogprobs,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Model is the judge deployment or model name.
func (j *OpenAIJudge) Model() string { return j.model }

// verdictFields is the common part of every verdict schema. Field names match
// case-insensitively.
type verdictFields struct {
	Reasoning      string
	ChainOfThought string
	Score          float64
}

func (j *OpenAIJudge) Judge(ctx context.Context, in Input) (Verdict, error) {
	schema := in.Metric.verdictSchema()
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(j.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(in.Metric)),
			openai.UserMessage(userPrompt(in)),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   strings.TrimSuffix(schema.Name(), ".schema.json"),
					Schema: schema.Document(),
				},
			},
		},
	}
	if j.logprobs {
		params.Logprobs = openai.Bool(true)
		params.TopLogprobs = openai.Int(int64(j.topLogprobs))
	}

	if err := j.limiter.Wait(ctx); err != nil {
		return Verdict{}, err
	}
	completion, err := j.client.New(ctx, params)
	if err != nil {
		return Verdict{}, fmt.Errorf("judge %s: chat completion failed: %w", in.Metric.Name, err)
	}
	choice, err := llm.FirstChoice(completion)
	if err != nil {
		return Verdict{}, fmt.Errorf("judge %s: %w", in.Metric.Name, err)
	}

	v, err := parseVerdict(in.Metric, choice.Message.Content)
	if err != nil {
		return Verdict{}, err
	}
	v.ProbScore = NormalizeScore(v.Score)
	if expected, ok := ExpectedScore(tokenLogprobs(choice.Logprobs.Content), "score"); ok {
		v.ProbScore = NormalizeScore(expected)
	}
	return v, nil
}

// parseVerdict validates content against the metric's verdict schema and
// decodes it.
func parseVerdict(m Metric, content string) (Verdict, error) {
	decoded, errs := m.verdictSchema().ValidateJSON([]byte(content))
	if len(errs) > 0 {
		return Verdict{}, fmt.Errorf("judge %s: %w: %s", m.Name, ErrInvalidVerdict, strings.Join(errs, "; "))
	}
	fields, ok := decoded.(map[string]any)
	if !ok {
		return Verdict{}, fmt.Errorf("judge %s: %w: not an object", m.Name, ErrInvalidVerdict)
	}

	var vf verdictFields
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &vf,
	})
	if err != nil {
		return Verdict{}, err
	}
	if err := dec.Decode(fields); err != nil {
		return Verdict{}, errors.Join(ErrInvalidVerdict, fmt.Errorf("judge %s: %w", m.Name, err))
	}

	return Verdict{
		EvalName:       m.EvalName,
		Score:          vf.Score,
		Reasoning:      vf.Reasoning,
		ChainOfThought: vf.ChainOfThought,
		Fields:         fields,
	}, nil
}

func tokenLogprobs(content []openai.ChatCompletionTokenLogprob) []TokenLogprob {
	out := make([]TokenLogprob, 0, len(content))
	for _, c := range content {
		tok := TokenLogprob{Token: c.Token, Logprob: c.Logprob}
		for _, alt := range c.TopLogprobs {
			tok.Top = append(tok.Top, TokenAlternative{Token: alt.Token, Logprob: alt.Logprob})
		}
		out = append(out, tok)
	}
	return out
}
