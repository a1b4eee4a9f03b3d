package judge

import (
	"math"
	"strconv"
	"strings"
)

// TokenLogprob is one sampled token with its most likely alternatives.
type TokenLogprob struct {
	Token   string
	Logprob float64
	Top     []TokenAlternative
}

// TokenAlternative is a candidate token at one position.
type TokenAlternative struct {
	Token   string
	Logprob float64
}

const (
	minScore = 1
	maxScore = 5
)

// ExpectedScore finds the token holding the value of field in a streamed JSON
// answer and returns the probability-weighted mean of the digit candidates
// at that position. It reports false when no such token or no digit
// alternative exists.
func ExpectedScore(tokens []TokenLogprob, field string) (float64, bool) {
	var seen strings.Builder
	marker := `"` + field + `"`
	for _, tok := range tokens {
		before := seen.String()
		seen.WriteString(tok.Token)
		if _, ok := scoreDigit(tok.Token); !ok {
			continue
		}
		if !valueFollows(before, marker) {
			continue
		}
		alts := tok.Top
		if len(alts) == 0 {
			alts = []TokenAlternative{{Token: tok.Token, Logprob: tok.Logprob}}
		}
		return weightedMean(alts)
	}
	return 0, false
}

// valueFollows reports whether text ends with `"field":` give or take
// whitespace, meaning the next token starts the field's value.
func valueFollows(text, marker string) bool {
	i := strings.LastIndex(text, marker)
	if i < 0 {
		return false
	}
	rest := strings.TrimSpace(text[i+len(marker):])
	return rest == ":"
}

func weightedMean(alts []TokenAlternative) (float64, bool) {
	var total, weighted float64
	for _, a := range alts {
		d, ok := scoreDigit(a.Token)
		if !ok {
			continue
		}
		p := math.Exp(a.Logprob)
		total += p
		weighted += p * float64(d)
	}
	if total == 0 {
		return 0, false
	}
	return weighted / total, true
}

func scoreDigit(token string) (int, bool) {
	d, err := strconv.Atoi(strings.Trim(token, " \t\r\n,}"))
	if err != nil || d < minScore || d > maxScore {
		return 0, false
	}
	return d, true
}

// NormalizeScore maps a score on the 1-5 scale onto [0,1].
func NormalizeScore(score float64) float64 {
	p := (score - minScore) / (maxScore - minScore)
	return math.Max(0, math.Min(1, p))
}
