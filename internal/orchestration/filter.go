package orchestration

import (
	"fmt"
	"path/filepath"

	"github.com/agentsleague/prepeval/internal/models"
)

// FilterCases returns the subset of cases whose CaseID or ScenarioID matches
// at least one of the given glob patterns. An empty patterns slice returns all
// cases unchanged.
func FilterCases(cases []models.DatasetCase, patterns []string) ([]models.DatasetCase, error) {
	if len(patterns) == 0 {
		return cases, nil
	}

	var matched []models.DatasetCase
	for _, c := range cases {
		ok, err := matchesAny(c, patterns)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// matchesAny reports whether a case's CaseID or ScenarioID matches any pattern.
func matchesAny(c models.DatasetCase, patterns []string) (bool, error) {
	for _, p := range patterns {
		idMatch, err := filepath.Match(p, c.CaseID)
		if err != nil {
			return false, fmt.Errorf("invalid case filter pattern %q: %w", p, err)
		}
		if idMatch {
			return true, nil
		}
		if c.ScenarioID == "" {
			continue
		}
		scenarioMatch, err := filepath.Match(p, c.ScenarioID)
		if err != nil {
			return false, fmt.Errorf("invalid case filter pattern %q: %w", p, err)
		}
		if scenarioMatch {
			return true, nil
		}
	}
	return false, nil
}
