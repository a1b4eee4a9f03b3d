package reporting

import (
	"time"

	"github.com/agentsleague/prepeval/internal/models"
	"github.com/agentsleague/prepeval/internal/utils"
)

// BuildReport aggregates case results per agent. Agent and metric names are
// grouped ignoring letter case; each group is keyed by the first spelling
// seen. Cases keep their input order.
func BuildReport(results []models.CaseEvaluationResult, runID string, now time.Time) *models.EvalRunReport {
	type metricSum struct {
		name  string
		count int
		score float64
		prob  float64
	}
	type agentSum struct {
		name      string
		total     int
		passed    int
		composite float64
		metrics   map[string]*metricSum
		order     []string
	}

	agents := map[string]*agentSum{}
	var agentOrder []string
	passedTotal := 0

	for _, r := range results {
		key := utils.FoldKey(r.AgentName)
		a, ok := agents[key]
		if !ok {
			a = &agentSum{name: r.AgentName, metrics: map[string]*metricSum{}}
			agents[key] = a
			agentOrder = append(agentOrder, key)
		}
		a.total++
		a.composite += r.CompositeScore
		if r.Passed {
			a.passed++
			passedTotal++
		}
		for _, m := range r.Metrics {
			mk := utils.FoldKey(m.MetricName)
			s, ok := a.metrics[mk]
			if !ok {
				s = &metricSum{name: m.MetricName}
				a.metrics[mk] = s
				a.order = append(a.order, mk)
			}
			s.count++
			s.score += m.Score
			s.prob += m.ProbScore
		}
	}

	perAgent := make(map[string]models.AgentEvaluationReport, len(agents))
	for _, key := range agentOrder {
		a := agents[key]
		averages := make(map[string]models.MetricAverageReport, len(a.metrics))
		for _, mk := range a.order {
			s := a.metrics[mk]
			averages[s.name] = models.MetricAverageReport{
				Count:            s.count,
				AverageScore:     s.score / float64(s.count),
				AverageProbScore: s.prob / float64(s.count),
			}
		}
		report := models.AgentEvaluationReport{
			TotalCases:       a.total,
			PassedCases:      a.passed,
			PassRate:         ratio(a.passed, a.total),
			CompositeAverage: a.composite / float64(a.total),
			MetricAverages:   averages,
		}
		report.Explanation = Explain(report)
		perAgent[a.name] = report
	}

	cases := results
	if cases == nil {
		cases = []models.CaseEvaluationResult{}
	}
	return &models.EvalRunReport{
		RunID:           runID,
		GeneratedAtUTC:  now.UTC(),
		TotalCases:      len(results),
		TotalPassed:     passedTotal,
		OverallPassRate: ratio(passedTotal, len(results)),
		PerAgent:        perAgent,
		Cases:           cases,
	}
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
