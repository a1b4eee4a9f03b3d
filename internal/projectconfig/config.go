// Package projectconfig provides the ProjectConfig struct and loader for
// .prepeval.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentsleague/prepeval/internal/llm"
	"github.com/agentsleague/prepeval/internal/scoring"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".prepeval.yaml"

// Default values for project configuration. These are the single source of
// truth. New() references them and no other code should duplicate them.
const (
	DefaultDatasetRoot = "datasets"
	DefaultLogsDir     = "logs"

	DefaultMaxCasesPerAgent = 10
	DefaultAgentTimeout     = 120

	DefaultProvider      = llm.ProviderAzure
	DefaultEndpointEnv   = "AZURE_OPENAI_ENDPOINT"
	DefaultAPIKeyEnv     = "AZURE_OPENAI_API_KEY"
	DefaultDeploymentEnv = "AZURE_OPENAI_DEPLOYMENT"
	DefaultOpenAIKeyEnv  = "OPENAI_API_KEY"

	DefaultTopLogprobs = 5
	DefaultCacheDir    = ".prepeval-cache"
)

// PathsConfig holds dataset and output locations. An empty Reports directory
// means <datasets>/reports.
type PathsConfig struct {
	Datasets string `yaml:"datasets,omitempty"`
	Reports  string `yaml:"reports,omitempty"`
	Logs     string `yaml:"logs,omitempty"`
}

// DefaultsConfig holds default run parameters.
type DefaultsConfig struct {
	Model            string `yaml:"model,omitempty"`
	JudgeModel       string `yaml:"judge_model,omitempty"`
	MaxCasesPerAgent int    `yaml:"max_cases_per_agent,omitempty"`
	MaxConcurrency   int    `yaml:"max_concurrency,omitempty"`
	Timeout          int    `yaml:"timeout,omitempty"`
	RunLog           *bool  `yaml:"run_log,omitempty"`

	// MaxToolTurns bounds tool round trips per agent call; zero keeps the
	// engine default.
	MaxToolTurns int      `yaml:"max_tool_turns,omitempty"`
	Temperature  *float64 `yaml:"temperature,omitempty"`
}

// EndpointConfig selects the chat-completions backend. Secrets are never
// stored in the file; the *_env fields name the environment variables that
// hold them.
type EndpointConfig struct {
	Provider           string `yaml:"provider,omitempty"`
	BaseURL            string `yaml:"base_url,omitempty"`
	APIVersion         string `yaml:"api_version,omitempty"`
	EndpointEnv        string `yaml:"endpoint_env,omitempty"`
	APIKeyEnv          string `yaml:"api_key_env,omitempty"`
	DeploymentEnv      string `yaml:"deployment_env,omitempty"`
	UseAzureCredential *bool  `yaml:"use_azure_credential,omitempty"`
}

// CacheConfig holds judge cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// JudgeConfig tunes the metric judge.
type JudgeConfig struct {
	Logprobs          *bool       `yaml:"logprobs,omitempty"`
	TopLogprobs       int         `yaml:"top_logprobs,omitempty"`
	RequestsPerSecond float64     `yaml:"requests_per_second,omitempty"`
	Burst             int         `yaml:"burst,omitempty"`
	Cache             CacheConfig `yaml:"cache,omitempty"`
}

// UploadConfig names the Azure Storage container reports are copied to.
type UploadConfig struct {
	AccountURL string `yaml:"account_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
	Prefix     string `yaml:"prefix,omitempty"`
	Gzip       *bool  `yaml:"gzip,omitempty"`
}

// Enabled reports whether both the account and the container are set.
func (u UploadConfig) Enabled() bool {
	return u.AccountURL != "" && u.Container != ""
}

// ErrMissingEndpoint reports that no usable chat endpoint is configured.
var ErrMissingEndpoint = errors.New("missing Azure OpenAI configuration")

// ProjectConfig is the top-level configuration loaded from .prepeval.yaml.
// Scoring overrides (profiles, thresholds, hard_fail_metrics,
// hard_fail_floor) sit at the top level of the file.
type ProjectConfig struct {
	Paths    PathsConfig       `yaml:"paths,omitempty"`
	Defaults DefaultsConfig    `yaml:"defaults,omitempty"`
	Endpoint EndpointConfig    `yaml:"endpoint,omitempty"`
	Judge    JudgeConfig       `yaml:"judge,omitempty"`
	Upload   UploadConfig      `yaml:"upload,omitempty"`
	Scoring  scoring.Overrides `yaml:",inline"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Datasets: DefaultDatasetRoot,
			Logs:     DefaultLogsDir,
		},
		Defaults: DefaultsConfig{
			Model:            "",
			JudgeModel:       "",
			MaxCasesPerAgent: DefaultMaxCasesPerAgent,
			MaxConcurrency:   0,
			Timeout:          DefaultAgentTimeout,
			RunLog:           boolPtr(false),
		},
		Endpoint: EndpointConfig{
			Provider:           DefaultProvider,
			APIVersion:         llm.DefaultAzureAPIVersion,
			EndpointEnv:        DefaultEndpointEnv,
			APIKeyEnv:          DefaultAPIKeyEnv,
			DeploymentEnv:      DefaultDeploymentEnv,
			UseAzureCredential: boolPtr(false),
		},
		Judge: JudgeConfig{
			Logprobs:    boolPtr(true),
			TopLogprobs: DefaultTopLogprobs,
			Cache: CacheConfig{
				Enabled: boolPtr(false),
				Dir:     DefaultCacheDir,
			},
		},
		Upload: UploadConfig{
			Gzip: boolPtr(false),
		},
	}
}

// Load finds .prepeval.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .prepeval.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates real
// I/O errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Datasets != "" {
		dst.Paths.Datasets = src.Paths.Datasets
	}
	if src.Paths.Reports != "" {
		dst.Paths.Reports = src.Paths.Reports
	}
	if src.Paths.Logs != "" {
		dst.Paths.Logs = src.Paths.Logs
	}

	// Defaults
	if src.Defaults.Model != "" {
		dst.Defaults.Model = src.Defaults.Model
	}
	if src.Defaults.JudgeModel != "" {
		dst.Defaults.JudgeModel = src.Defaults.JudgeModel
	}
	if src.Defaults.MaxCasesPerAgent != 0 {
		dst.Defaults.MaxCasesPerAgent = src.Defaults.MaxCasesPerAgent
	}
	if src.Defaults.MaxConcurrency != 0 {
		dst.Defaults.MaxConcurrency = src.Defaults.MaxConcurrency
	}
	if src.Defaults.Timeout != 0 {
		dst.Defaults.Timeout = src.Defaults.Timeout
	}
	if src.Defaults.RunLog != nil {
		dst.Defaults.RunLog = src.Defaults.RunLog
	}
	if src.Defaults.MaxToolTurns != 0 {
		dst.Defaults.MaxToolTurns = src.Defaults.MaxToolTurns
	}
	if src.Defaults.Temperature != nil {
		dst.Defaults.Temperature = src.Defaults.Temperature
	}

	// Endpoint
	if src.Endpoint.Provider != "" {
		dst.Endpoint.Provider = src.Endpoint.Provider
	}
	if src.Endpoint.BaseURL != "" {
		dst.Endpoint.BaseURL = src.Endpoint.BaseURL
	}
	if src.Endpoint.APIVersion != "" {
		dst.Endpoint.APIVersion = src.Endpoint.APIVersion
	}
	if src.Endpoint.EndpointEnv != "" {
		dst.Endpoint.EndpointEnv = src.Endpoint.EndpointEnv
	}
	if src.Endpoint.APIKeyEnv != "" {
		dst.Endpoint.APIKeyEnv = src.Endpoint.APIKeyEnv
	}
	if src.Endpoint.DeploymentEnv != "" {
		dst.Endpoint.DeploymentEnv = src.Endpoint.DeploymentEnv
	}
	if src.Endpoint.UseAzureCredential != nil {
		dst.Endpoint.UseAzureCredential = src.Endpoint.UseAzureCredential
	}

	// Judge
	if src.Judge.Logprobs != nil {
		dst.Judge.Logprobs = src.Judge.Logprobs
	}
	if src.Judge.TopLogprobs != 0 {
		dst.Judge.TopLogprobs = src.Judge.TopLogprobs
	}
	if src.Judge.RequestsPerSecond != 0 {
		dst.Judge.RequestsPerSecond = src.Judge.RequestsPerSecond
	}
	if src.Judge.Burst != 0 {
		dst.Judge.Burst = src.Judge.Burst
	}
	if src.Judge.Cache.Enabled != nil {
		dst.Judge.Cache.Enabled = src.Judge.Cache.Enabled
	}
	if src.Judge.Cache.Dir != "" {
		dst.Judge.Cache.Dir = src.Judge.Cache.Dir
	}

	// Upload
	if src.Upload.AccountURL != "" {
		dst.Upload.AccountURL = src.Upload.AccountURL
	}
	if src.Upload.Container != "" {
		dst.Upload.Container = src.Upload.Container
	}
	if src.Upload.Prefix != "" {
		dst.Upload.Prefix = src.Upload.Prefix
	}
	if src.Upload.Gzip != nil {
		dst.Upload.Gzip = src.Upload.Gzip
	}

	// Scoring
	if !src.Scoring.IsZero() {
		dst.Scoring = src.Scoring
	}
}

// ResolveModel returns the configured agent model, falling back to the
// deployment named in the environment. An empty result means no model is
// configured.
func (c *ProjectConfig) ResolveModel(getenv func(string) string) string {
	if c.Defaults.Model != "" {
		return c.Defaults.Model
	}
	if c.Endpoint.DeploymentEnv != "" {
		return strings.TrimSpace(getenv(c.Endpoint.DeploymentEnv))
	}
	return ""
}

// ResolveJudgeModel returns the judge model, defaulting to the agent model.
func (c *ProjectConfig) ResolveJudgeModel(getenv func(string) string) string {
	if c.Defaults.JudgeModel != "" {
		return c.Defaults.JudgeModel
	}
	return c.ResolveModel(getenv)
}

// ResolveEndpoint builds the chat client settings, reading the endpoint URL
// and the key from the environment variables named in the endpoint section.
func (c *ProjectConfig) ResolveEndpoint(getenv func(string) string) (llm.EndpointConfig, error) {
	ep := llm.EndpointConfig{
		Provider:           strings.ToLower(c.Endpoint.Provider),
		BaseURL:            c.Endpoint.BaseURL,
		APIVersion:         c.Endpoint.APIVersion,
		UseAzureCredential: c.Endpoint.UseAzureCredential != nil && *c.Endpoint.UseAzureCredential,
		Timeout:            time.Duration(c.Defaults.Timeout) * time.Second,
	}

	switch ep.Provider {
	case llm.ProviderAzure:
		if ep.BaseURL == "" && c.Endpoint.EndpointEnv != "" {
			ep.BaseURL = strings.TrimSpace(getenv(c.Endpoint.EndpointEnv))
		}
		if c.Endpoint.APIKeyEnv != "" {
			ep.APIKey = strings.TrimSpace(getenv(c.Endpoint.APIKeyEnv))
		}
		if ep.BaseURL == "" || (ep.APIKey == "" && !ep.UseAzureCredential) {
			return llm.EndpointConfig{}, fmt.Errorf("%w: set %s and %s (or use_azure_credential) plus %s",
				ErrMissingEndpoint, c.Endpoint.EndpointEnv, c.Endpoint.APIKeyEnv, c.Endpoint.DeploymentEnv)
		}
	case llm.ProviderOpenAI:
		keyEnv := c.Endpoint.APIKeyEnv
		if keyEnv == "" || keyEnv == DefaultAPIKeyEnv {
			keyEnv = DefaultOpenAIKeyEnv
		}
		ep.APIKey = strings.TrimSpace(getenv(keyEnv))
		if ep.APIKey == "" {
			return llm.EndpointConfig{}, fmt.Errorf("%w: set %s", ErrMissingEndpoint, keyEnv)
		}
	default:
		return llm.EndpointConfig{}, fmt.Errorf("unknown provider %q (want %s or %s)", c.Endpoint.Provider, llm.ProviderAzure, llm.ProviderOpenAI)
	}
	return ep, nil
}

func boolPtr(b bool) *bool {
	return &b
}
