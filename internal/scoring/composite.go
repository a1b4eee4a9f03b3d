package scoring

import (
	"fmt"
	"strings"

	"github.com/agentsleague/prepeval/internal/models"
)

// Composite is the weight-normalized mean score over the metrics that have a
// weight in profile. It is zero when no metric matches or the matched
// weights sum to zero.
func Composite(metrics []models.MetricEvaluationResult, profile Profile) float64 {
	var weighted, total float64
	for _, m := range metrics {
		w, ok := profile.Weight(m.MetricName)
		if !ok {
			continue
		}
		weighted += m.Score * w
		total += w
	}
	if total <= 0 {
		return 0
	}
	return weighted / total
}

// Outcome is the scoring decision for one case.
type Outcome struct {
	Composite     float64
	Passed        bool
	FailureReason string
}

// Evaluate scores metrics against profile. A case fails when a hard-fail
// metric is below the floor, when any metric misses its threshold, or when
// the composite is below the profile's cutoff.
func (p *Policy) Evaluate(metrics []models.MetricEvaluationResult, profile Profile) Outcome {
	composite := Composite(metrics, profile)

	hardFail := false
	thresholdMiss := false
	for _, m := range metrics {
		if p.isHardFailure(m) {
			hardFail = true
		}
		if t, ok := p.Threshold(m.MetricName); ok && m.Score < t {
			thresholdMiss = true
		}
	}

	passed := !hardFail && !thresholdMiss && composite >= profile.PassComposite
	out := Outcome{Composite: composite, Passed: passed}
	if !passed {
		out.FailureReason = p.FailureReason(metrics, profile, composite)
	}
	return out
}

// FailureReason explains why a case failed. Groups appear in a fixed order
// (hard fails, threshold misses that are not hard fails, composite
// shortfall) and are joined with "; ".
func (p *Policy) FailureReason(metrics []models.MetricEvaluationResult, profile Profile, composite float64) string {
	var reasons []string

	var hard []string
	for _, m := range metrics {
		if p.isHardFailure(m) {
			hard = append(hard, fmt.Sprintf("%s=%s", m.MetricName, format2(m.Score)))
		}
	}
	if len(hard) > 0 {
		reasons = append(reasons, fmt.Sprintf("Hard-fail metrics (<%s): %s", format2(p.hardFailFloor), strings.Join(hard, ", ")))
	}

	var misses []string
	for _, m := range metrics {
		t, ok := p.Threshold(m.MetricName)
		if !ok || m.Score >= t || p.isHardFailure(m) {
			continue
		}
		misses = append(misses, fmt.Sprintf("%s=%s (<%s)", m.MetricName, format2(m.Score), format2(t)))
	}
	if len(misses) > 0 {
		reasons = append(reasons, "Below threshold: "+strings.Join(misses, ", "))
	}

	if composite < profile.PassComposite {
		reasons = append(reasons, fmt.Sprintf("Composite=%s (<%s)", format2(composite), format2(profile.PassComposite)))
	}

	if len(reasons) == 0 {
		return "Failed scoring checks."
	}
	return strings.Join(reasons, "; ")
}

func (p *Policy) isHardFailure(m models.MetricEvaluationResult) bool {
	return p.IsHardFail(m.MetricName) && m.Score < p.hardFailFloor
}

func format2(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
