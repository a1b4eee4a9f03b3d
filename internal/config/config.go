// Package config carries the run-scoped options of one evaluation run.
package config

import (
	"runtime"

	"github.com/agentsleague/prepeval/internal/dataset"
)

// RunConfig holds the options of a single evaluation run. Build it with
// NewRunConfig and the With* options; it is read-only afterwards.
type RunConfig struct {
	datasetRoot      string
	datasetFiles     []string
	agents           []string
	caseFilters      []string
	outputPath       string
	logPath          string
	junitPath        string
	profileFile      string
	model            string
	judgeModel       string
	maxCasesPerAgent int
	maxConcurrency   int
	skipLines        int
	verbose          bool
}

// RunOption configures a RunConfig.
type RunOption func(*RunConfig)

// DefaultMaxConcurrency is one less than the CPU count, never below one.
func DefaultMaxConcurrency() int {
	return max(1, runtime.NumCPU()-1)
}

// NewRunConfig returns a RunConfig with defaults applied, then opts in order.
func NewRunConfig(opts ...RunOption) *RunConfig {
	cfg := &RunConfig{
		maxCasesPerAgent: dataset.DefaultMaxCasesPerAgent,
		maxConcurrency:   DefaultMaxConcurrency(),
		skipLines:        dataset.DefaultSkipLines,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func WithDatasetRoot(root string) RunOption {
	return func(c *RunConfig) { c.datasetRoot = root }
}

// WithDatasetFiles replaces the per-agent default files under the dataset root.
func WithDatasetFiles(paths ...string) RunOption {
	return func(c *RunConfig) { c.datasetFiles = append([]string(nil), paths...) }
}

// WithAgents restricts the run to the named agents.
func WithAgents(names ...string) RunOption {
	return func(c *RunConfig) { c.agents = append([]string(nil), names...) }
}

// WithCaseFilters keeps only cases whose id or scenario matches a glob.
func WithCaseFilters(patterns ...string) RunOption {
	return func(c *RunConfig) { c.caseFilters = append([]string(nil), patterns...) }
}

func WithOutputPath(path string) RunOption {
	return func(c *RunConfig) { c.outputPath = path }
}

func WithLogPath(path string) RunOption {
	return func(c *RunConfig) { c.logPath = path }
}

func WithJUnitPath(path string) RunOption {
	return func(c *RunConfig) { c.junitPath = path }
}

func WithProfileFile(path string) RunOption {
	return func(c *RunConfig) { c.profileFile = path }
}

func WithModel(model string) RunOption {
	return func(c *RunConfig) { c.model = model }
}

func WithJudgeModel(model string) RunOption {
	return func(c *RunConfig) { c.judgeModel = model }
}

// WithMaxCasesPerAgent caps cases per agent; values below one keep the default.
func WithMaxCasesPerAgent(n int) RunOption {
	return func(c *RunConfig) {
		if n > 0 {
			c.maxCasesPerAgent = n
		}
	}
}

// WithMaxConcurrency bounds concurrent judge calls per case; values below one
// mean sequential.
func WithMaxConcurrency(n int) RunOption {
	return func(c *RunConfig) { c.maxConcurrency = max(1, n) }
}

// WithSkipLines overrides the number of header lines skipped per dataset file.
func WithSkipLines(n int) RunOption {
	return func(c *RunConfig) { c.skipLines = max(0, n) }
}

func WithVerbose(v bool) RunOption {
	return func(c *RunConfig) { c.verbose = v }
}

func (c *RunConfig) DatasetRoot() string {
	return c.datasetRoot
}

func (c *RunConfig) Agents() []string {
	return c.agents
}

func (c *RunConfig) CaseFilters() []string {
	return c.caseFilters
}

func (c *RunConfig) OutputPath() string {
	return c.outputPath
}

func (c *RunConfig) LogPath() string {
	return c.logPath
}

func (c *RunConfig) JUnitPath() string {
	return c.junitPath
}

func (c *RunConfig) ProfileFile() string {
	return c.profileFile
}

func (c *RunConfig) Model() string {
	return c.model
}

func (c *RunConfig) JudgeModel() string {
	return c.judgeModel
}

func (c *RunConfig) MaxCasesPerAgent() int {
	return c.maxCasesPerAgent
}

func (c *RunConfig) MaxConcurrency() int {
	return c.maxConcurrency
}

func (c *RunConfig) Verbose() bool {
	return c.verbose
}

// DatasetFiles returns the explicit files when set, otherwise the per-agent
// files under the dataset root.
func (c *RunConfig) DatasetFiles() []string {
	if len(c.datasetFiles) > 0 {
		return c.datasetFiles
	}
	return dataset.DefaultFiles(c.datasetRoot)
}

// LoadOptions converts the run settings into dataset loader options.
func (c *RunConfig) LoadOptions() dataset.LoadOptions {
	return dataset.LoadOptions{
		SkipLines:        c.skipLines,
		MaxCasesPerAgent: c.maxCasesPerAgent,
		Agents:           c.agents,
	}
}
