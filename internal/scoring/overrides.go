package scoring

import (
	"fmt"
	"os"
	"strings"

	"github.com/agentsleague/prepeval/internal/validation"
	"gopkg.in/yaml.v3"
)

// Overrides adjusts the built-in policy. It is read from a standalone
// profile file or from the project configuration.
type Overrides struct {
	Profiles        map[string]Profile `yaml:"profiles,omitempty"`
	Thresholds      map[string]float64 `yaml:"thresholds,omitempty"`
	HardFailMetrics []string           `yaml:"hard_fail_metrics,omitempty"`
	HardFailFloor   *float64           `yaml:"hard_fail_floor,omitempty"`
}

// IsZero reports whether o changes nothing.
func (o Overrides) IsZero() bool {
	return len(o.Profiles) == 0 && len(o.Thresholds) == 0 && o.HardFailMetrics == nil && o.HardFailFloor == nil
}

// LoadOverrides reads and validates a profile file.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("reading profile file %s: %w", path, err)
	}
	if errs := validation.ScoringProfiles.ValidateYAML(data); len(errs) > 0 {
		return Overrides{}, fmt.Errorf("invalid profile file %s:\n  %s", path, strings.Join(errs, "\n  "))
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("parsing profile file %s: %w", path, err)
	}
	return o, nil
}

// Apply merges o into the policy. Profiles with a known name replace the
// existing profile; thresholds are set one metric at a time.
func (p *Policy) Apply(o Overrides) {
	for name, profile := range o.Profiles {
		profile.Name = name
		p.SetProfile(profile)
	}
	for metric, threshold := range o.Thresholds {
		p.SetThreshold(metric, threshold)
	}
	if o.HardFailMetrics != nil {
		p.SetHardFailMetrics(o.HardFailMetrics...)
	}
	if o.HardFailFloor != nil {
		p.SetHardFailFloor(*o.HardFailFloor)
	}
}
