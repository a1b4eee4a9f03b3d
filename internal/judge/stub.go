package judge

import (
	"context"
	"sync"

	"github.com/agentsleague/prepeval/internal/utils"
)

// StubJudge returns fixed scores per metric. It records every input it
// receives and is safe for concurrent use.
type StubJudge struct {
	mu       sync.Mutex
	scores   map[string]float64
	errs     map[string]error
	fallback float64
	inputs   []Input
}

// NewStubJudge returns a judge that scores every metric at fallback unless
// told otherwise.
func NewStubJudge(fallback float64) *StubJudge {
	return &StubJudge{
		scores:   map[string]float64{},
		errs:     map[string]error{},
		fallback: fallback,
	}
}

// WithScore sets the score returned for metric.
func (s *StubJudge) WithScore(metric string, score float64) *StubJudge {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[utils.FoldKey(metric)] = score
	return s
}

// WithError makes the judge fail for metric.
func (s *StubJudge) WithError(metric string, err error) *StubJudge {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[utils.FoldKey(metric)] = err
	return s
}

func (s *StubJudge) Judge(ctx context.Context, in Input) (Verdict, error) {
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)

	key := utils.FoldKey(in.Metric.Name)
	if err, ok := s.errs[key]; ok {
		return Verdict{}, err
	}
	score, ok := s.scores[key]
	if !ok {
		score = s.fallback
	}
	return Verdict{
		EvalName:  in.Metric.EvalName,
		Score:     score,
		ProbScore: NormalizeScore(score),
		Reasoning: "stub verdict",
	}, nil
}

// Inputs returns a copy of the inputs judged so far.
func (s *StubJudge) Inputs() []Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Input, len(s.inputs))
	copy(out, s.inputs)
	return out
}
