package config

import (
	"path/filepath"
	"testing"

	"github.com/agentsleague/prepeval/internal/dataset"
)

func TestNewRunConfig_DefaultValues(t *testing.T) {
	cfg := NewRunConfig()

	if cfg.DatasetRoot() != "" {
		t.Fatalf("DatasetRoot() = %q, want empty", cfg.DatasetRoot())
	}
	if cfg.OutputPath() != "" {
		t.Fatalf("OutputPath() = %q, want empty", cfg.OutputPath())
	}
	if cfg.LogPath() != "" {
		t.Fatalf("LogPath() = %q, want empty", cfg.LogPath())
	}
	if cfg.JUnitPath() != "" {
		t.Fatalf("JUnitPath() = %q, want empty", cfg.JUnitPath())
	}
	if cfg.MaxCasesPerAgent() != dataset.DefaultMaxCasesPerAgent {
		t.Fatalf("MaxCasesPerAgent() = %d, want %d", cfg.MaxCasesPerAgent(), dataset.DefaultMaxCasesPerAgent)
	}
	if cfg.MaxConcurrency() != DefaultMaxConcurrency() {
		t.Fatalf("MaxConcurrency() = %d, want %d", cfg.MaxConcurrency(), DefaultMaxConcurrency())
	}
	if DefaultMaxConcurrency() < 1 {
		t.Fatalf("DefaultMaxConcurrency() = %d, want >= 1", DefaultMaxConcurrency())
	}
	if len(cfg.Agents()) != 0 {
		t.Fatalf("Agents() = %v, want empty", cfg.Agents())
	}
	if cfg.Verbose() {
		t.Fatalf("Verbose() = true, want false")
	}
}

func TestNewRunConfig_AppliesFunctionalOptions(t *testing.T) {
	cfg := NewRunConfig(
		WithDatasetRoot("/data"),
		WithOutputPath("out/report.json"),
		WithLogPath("logs/run.jsonl"),
		WithJUnitPath("junit.xml"),
		WithProfileFile("profiles.yaml"),
		WithModel("gpt-4o"),
		WithJudgeModel("gpt-4o-mini"),
		WithMaxCasesPerAgent(3),
		WithMaxConcurrency(4),
		WithAgents("engagement-agent"),
		WithVerbose(true),
	)

	if cfg.DatasetRoot() != "/data" {
		t.Fatalf("DatasetRoot() = %q, want %q", cfg.DatasetRoot(), "/data")
	}
	if cfg.OutputPath() != "out/report.json" {
		t.Fatalf("OutputPath() = %q, want %q", cfg.OutputPath(), "out/report.json")
	}
	if cfg.LogPath() != "logs/run.jsonl" {
		t.Fatalf("LogPath() = %q, want %q", cfg.LogPath(), "logs/run.jsonl")
	}
	if cfg.JUnitPath() != "junit.xml" {
		t.Fatalf("JUnitPath() = %q, want %q", cfg.JUnitPath(), "junit.xml")
	}
	if cfg.ProfileFile() != "profiles.yaml" {
		t.Fatalf("ProfileFile() = %q, want %q", cfg.ProfileFile(), "profiles.yaml")
	}
	if cfg.Model() != "gpt-4o" || cfg.JudgeModel() != "gpt-4o-mini" {
		t.Fatalf("Model()/JudgeModel() = %q/%q", cfg.Model(), cfg.JudgeModel())
	}
	if cfg.MaxCasesPerAgent() != 3 {
		t.Fatalf("MaxCasesPerAgent() = %d, want 3", cfg.MaxCasesPerAgent())
	}
	if cfg.MaxConcurrency() != 4 {
		t.Fatalf("MaxConcurrency() = %d, want 4", cfg.MaxConcurrency())
	}
	if len(cfg.Agents()) != 1 || cfg.Agents()[0] != "engagement-agent" {
		t.Fatalf("Agents() = %v, want [engagement-agent]", cfg.Agents())
	}
	if !cfg.Verbose() {
		t.Fatalf("Verbose() = false, want true")
	}

	opts := cfg.LoadOptions()
	if opts.MaxCasesPerAgent != 3 || opts.SkipLines != dataset.DefaultSkipLines || len(opts.Agents) != 1 {
		t.Fatalf("LoadOptions() = %+v", opts)
	}
}

func TestDatasetFiles(t *testing.T) {
	cfg := NewRunConfig(WithDatasetRoot("/data"))
	files := cfg.DatasetFiles()
	if len(files) != 4 {
		t.Fatalf("DatasetFiles() = %v, want 4 defaults", files)
	}
	if files[0] != filepath.Join("/data", "curator", "learning-path-curator.explain.jsonl") {
		t.Fatalf("DatasetFiles()[0] = %q", files[0])
	}

	cfg = NewRunConfig(WithDatasetRoot("/data"), WithDatasetFiles("a.jsonl", "b.jsonl"))
	files = cfg.DatasetFiles()
	if len(files) != 2 || files[0] != "a.jsonl" {
		t.Fatalf("DatasetFiles() = %v, want explicit files", files)
	}
}

func TestOptionOrder_LastOptionWins(t *testing.T) {
	cfg := NewRunConfig(
		WithVerbose(true),
		WithVerbose(false),
		WithMaxConcurrency(8),
		WithMaxConcurrency(0),
		WithMaxCasesPerAgent(5),
		WithMaxCasesPerAgent(0),
	)

	if cfg.Verbose() {
		t.Fatalf("Verbose() = true, want false")
	}
	if cfg.MaxConcurrency() != 1 {
		t.Fatalf("MaxConcurrency() = %d, want 1", cfg.MaxConcurrency())
	}
	if cfg.MaxCasesPerAgent() != 5 {
		t.Fatalf("MaxCasesPerAgent() = %d, want 5 (non-positive keeps previous)", cfg.MaxCasesPerAgent())
	}
}

func TestNewRunConfig_NilOptionPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for nil option, got none")
		}
	}()

	_ = NewRunConfig(nil)
}
