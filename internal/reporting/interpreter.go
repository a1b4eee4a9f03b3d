package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentsleague/prepeval/internal/models"
)

// InterpretScore returns a plain-language label for a judge score on the
// 1-5 scale.
func InterpretScore(score float64) string {
	pct := (score - 1) / 4 * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretPassRate returns a human-readable explanation of a pass rate (0–1).
func InterpretPassRate(rate float64) string {
	pct := rate * 100
	switch {
	case pct >= 100:
		return fmt.Sprintf("All cases passed (%.0f%%)", pct)
	case pct >= 80:
		return fmt.Sprintf("Most cases passed (%.0f%%)", pct)
	case pct >= 50:
		return fmt.Sprintf("About half the cases passed (%.0f%%)", pct)
	default:
		return fmt.Sprintf("Few cases passed (%.0f%%)", pct)
	}
}

// Explain summarizes an agent's results in one sentence-style line.
func Explain(a models.AgentEvaluationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d cases passed; composite average %.2f is %s", a.PassedCases, a.TotalCases, a.CompositeAverage, InterpretScore(a.CompositeAverage))
	if name, avg, ok := weakestMetric(a.MetricAverages); ok {
		fmt.Fprintf(&b, "; weakest metric %s (%.2f)", name, avg.AverageScore)
	}
	b.WriteString(".")
	return b.String()
}

// weakestMetric picks the lowest average score, breaking ties by name.
func weakestMetric(averages map[string]models.MetricAverageReport) (string, models.MetricAverageReport, bool) {
	if len(averages) == 0 {
		return "", models.MetricAverageReport{}, false
	}
	names := make([]string, 0, len(averages))
	for name := range averages {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if averages[name].AverageScore < averages[best].AverageScore {
			best = name
		}
	}
	return best, averages[best], true
}
