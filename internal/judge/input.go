package judge

import (
	"encoding/json"
	"fmt"

	"github.com/agentsleague/prepeval/internal/utils"
	"github.com/agentsleague/prepeval/internal/validation"
)

// Input is a judge request: the metric and its rendered text inputs.
type Input struct {
	Metric Metric
	Values map[string]string
}

// BuildInput selects the payload for metric from explain and renders every
// required key. Unknown metrics are rejected before the payload is looked up.
func BuildInput(explain map[string]map[string]any, metric string) (Input, error) {
	m, ok := Lookup(metric)
	if !ok {
		return Input{}, &UnsupportedMetricError{Metric: metric}
	}

	payload, ok := lookupPayload(explain, metric)
	if !ok {
		return Input{}, &MissingPayloadError{Metric: metric}
	}

	values := make(map[string]string, len(m.Required))
	for _, key := range m.Required {
		raw, ok := validation.TryValue(payload, key)
		if !ok {
			return Input{}, &MissingInputError{Key: key}
		}
		text, err := render(raw)
		if err != nil {
			return Input{}, fmt.Errorf("rendering explain input '%s' for %s: %w", key, m.Name, err)
		}
		values[key] = text
	}
	return Input{Metric: m, Values: values}, nil
}

func lookupPayload(explain map[string]map[string]any, metric string) (map[string]any, bool) {
	if p, ok := explain[metric]; ok {
		return p, true
	}
	key := utils.FoldKey(metric)
	for name, p := range explain {
		if utils.FoldKey(name) == key {
			return p, true
		}
	}
	return nil, false
}

// render turns an explain value into prompt text. Strings pass through and
// everything else, nil included, is serialized as JSON.
func render(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
