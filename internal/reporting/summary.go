package reporting

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/agentsleague/prepeval/internal/models"
	"github.com/mattn/go-runewidth"
)

// PrintSummary writes the per-agent console summary. Agents and metrics are
// listed in case-insensitive name order. Failed cases follow as an aligned
// table when there are any. path is omitted when empty.
func PrintSummary(w io.Writer, report *models.EvalRunReport, path string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Per-Agent Evaluation Report ===")
	for _, name := range sortedKeys(report.PerAgent) {
		a := report.PerAgent[name]
		fmt.Fprintf(w, "Agent: %s\n", name)
		fmt.Fprintf(w, "  Cases: %d\n", a.TotalCases)
		fmt.Fprintf(w, "  Composite Avg: %.3f\n", a.CompositeAverage)
		fmt.Fprintf(w, "  Pass Rate: %.2f%%\n", a.PassRate*100)
		for _, metric := range sortedKeys(a.MetricAverages) {
			m := a.MetricAverages[metric]
			fmt.Fprintf(w, "  - %s: score=%.3f, prob=%.3f\n", metric, m.AverageScore, m.AverageProbScore)
		}
		if a.Explanation != "" {
			fmt.Fprintf(w, "  %s\n", a.Explanation)
		}
		fmt.Fprintln(w)
	}

	printFailedCases(w, report.Cases)

	fmt.Fprintf(w, "Overall cases: %d\n", report.TotalCases)
	fmt.Fprintf(w, "Overall pass rate: %.2f%%\n", report.OverallPassRate*100)
	if path != "" {
		fmt.Fprintf(w, "Report written: %s\n", path)
	}
}

func printFailedCases(w io.Writer, cases []models.CaseEvaluationResult) {
	var failed []models.CaseEvaluationResult
	width := 0
	for _, c := range cases {
		if c.Passed {
			continue
		}
		failed = append(failed, c)
		width = max(width, runewidth.StringWidth(c.CaseID))
	}
	if len(failed) == 0 {
		return
	}

	fmt.Fprintln(w, "Failed cases:")
	for _, c := range failed {
		fmt.Fprintf(w, "  %s  %.2f  %s\n", runewidth.FillRight(c.CaseID, width), c.CompositeScore, c.FailureReason)
	}
	fmt.Fprintln(w)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := strings.ToLower(keys[i]), strings.ToLower(keys[j])
		if li != lj {
			return li < lj
		}
		return keys[i] < keys[j]
	})
	return keys
}
