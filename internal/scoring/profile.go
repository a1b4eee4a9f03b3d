// Package scoring turns per-metric judge scores into a weighted composite and
// a pass/fail decision.
package scoring

import (
	"maps"
	"slices"

	"github.com/agentsleague/prepeval/internal/utils"
)

// Built-in profile names.
const (
	ProfileDefault          = "prep_default"
	ProfileAssessmentStrict = "assessment_strict"

	// DefaultHardFailFloor is the score below which a hard-fail metric fails
	// a case on its own.
	DefaultHardFailFloor = 3.0
)

// Profile is a named scoring policy: the composite a case must reach and the
// weight of each metric in that composite. Weights need not sum to one.
type Profile struct {
	Name          string             `yaml:"-"`
	PassComposite float64            `yaml:"pass_threshold"`
	Weights       map[string]float64 `yaml:"weights"`
}

// Weight returns the weight for metric, ignoring letter case.
func (p Profile) Weight(metric string) (float64, bool) {
	if w, ok := p.Weights[metric]; ok {
		return w, true
	}
	key := utils.FoldKey(metric)
	for name, w := range p.Weights {
		if utils.FoldKey(name) == key {
			return w, true
		}
	}
	return 0, false
}

// Policy holds every profile plus the checks shared by all of them.
type Policy struct {
	profiles      map[string]Profile
	thresholds    map[string]float64
	hardFail      map[string]struct{}
	hardFailFloor float64
}

// DefaultPolicy returns the built-in profiles, per-metric thresholds and
// hard-fail metrics.
func DefaultPolicy() *Policy {
	p := &Policy{
		profiles:      map[string]Profile{},
		thresholds:    map[string]float64{},
		hardFail:      map[string]struct{}{},
		hardFailFloor: DefaultHardFailFloor,
	}
	p.SetProfile(Profile{
		Name:          ProfileDefault,
		PassComposite: 3.65,
		Weights: map[string]float64{
			"TaskAdherenceExplain":         0.20,
			"IntentResolutionExplain":      0.15,
			"ToolCallAccuracyExplain":      0.10,
			"RelevanceExplain":             0.15,
			"CoherenceExplain":             0.10,
			"PerceivedIntelligenceExplain": 0.10,
			"FluencyExplain":               0.10,
			"EmpathyExplain":               0.05,
			"HelpfulnessExplain":           0.05,
		},
	})
	p.SetProfile(Profile{
		Name:          ProfileAssessmentStrict,
		PassComposite: 3.70,
		Weights: map[string]float64{
			"TaskAdherenceExplain":         0.22,
			"IntentResolutionExplain":      0.13,
			"ToolCallAccuracyExplain":      0.12,
			"RelevanceExplain":             0.14,
			"CoherenceExplain":             0.10,
			"PerceivedIntelligenceExplain": 0.12,
			"FluencyExplain":               0.08,
			"EmpathyExplain":               0.03,
			"HelpfulnessExplain":           0.06,
		},
	})
	for metric, threshold := range map[string]float64{
		"RelevanceExplain":             3.6,
		"CoherenceExplain":             3.6,
		"PerceivedIntelligenceExplain": 3.5,
		"FluencyExplain":               3.7,
		"EmpathyExplain":               3.2,
		"HelpfulnessExplain":           3.7,
		"IntentResolutionExplain":      3.6,
		"ToolCallAccuracyExplain":      3.5,
		"TaskAdherenceExplain":         3.7,
	} {
		p.SetThreshold(metric, threshold)
	}
	p.SetHardFailMetrics("TaskAdherenceExplain", "IntentResolutionExplain", "ToolCallAccuracyExplain")
	return p
}

// SetProfile adds or replaces a profile.
func (p *Policy) SetProfile(profile Profile) {
	p.profiles[utils.FoldKey(profile.Name)] = profile
}

// SetThreshold sets the absolute floor for one metric.
func (p *Policy) SetThreshold(metric string, threshold float64) {
	p.thresholds[utils.FoldKey(metric)] = threshold
}

// SetHardFailMetrics replaces the hard-fail set.
func (p *Policy) SetHardFailMetrics(metrics ...string) {
	p.hardFail = make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		p.hardFail[utils.FoldKey(m)] = struct{}{}
	}
}

// SetHardFailFloor changes the hard-fail cutoff.
func (p *Policy) SetHardFailFloor(floor float64) {
	p.hardFailFloor = floor
}

// HardFailFloor returns the hard-fail cutoff.
func (p *Policy) HardFailFloor() float64 {
	return p.hardFailFloor
}

// Resolve returns the named profile, or the default profile when name is
// blank or unknown.
func (p *Policy) Resolve(name string) Profile {
	if name != "" {
		if profile, ok := p.profiles[utils.FoldKey(name)]; ok {
			return profile
		}
	}
	return p.profiles[utils.FoldKey(ProfileDefault)]
}

// ProfileNames lists the registered profiles, sorted.
func (p *Policy) ProfileNames() []string {
	names := make([]string, 0, len(p.profiles))
	for _, profile := range p.profiles {
		names = append(names, profile.Name)
	}
	slices.Sort(names)
	return names
}

// Threshold returns the absolute floor configured for metric.
func (p *Policy) Threshold(metric string) (float64, bool) {
	t, ok := p.thresholds[utils.FoldKey(metric)]
	return t, ok
}

// IsHardFail reports whether metric belongs to the hard-fail set.
func (p *Policy) IsHardFail(metric string) bool {
	_, ok := p.hardFail[utils.FoldKey(metric)]
	return ok
}

// Thresholds returns a copy of the configured thresholds keyed by folded
// metric name.
func (p *Policy) Thresholds() map[string]float64 {
	return maps.Clone(p.thresholds)
}
