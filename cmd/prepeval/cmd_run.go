package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/agentsleague/prepeval/internal/agents"
	"github.com/agentsleague/prepeval/internal/config"
	"github.com/agentsleague/prepeval/internal/judge"
	"github.com/agentsleague/prepeval/internal/models"
	"github.com/agentsleague/prepeval/internal/orchestration"
	"github.com/agentsleague/prepeval/internal/projectconfig"
	"github.com/agentsleague/prepeval/internal/reporting"
	"github.com/agentsleague/prepeval/internal/runlog"
	"github.com/agentsleague/prepeval/internal/scoring"
	"github.com/agentsleague/prepeval/internal/utils"
	"github.com/agentsleague/prepeval/internal/validation"
	"github.com/spf13/cobra"
)

// runOptions holds the flags of the run command.
type runOptions struct {
	datasetRoot      string
	datasetFiles     []string
	agents           []string
	caseFilters      []string
	outputPath       string
	logPath          string
	junitPath        string
	profileFile      string
	maxCasesPerAgent int
	maxConcurrency   int
	skipLines        int
	upload           bool
	verbose          bool
	backend          backendOptions
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the agents against the dataset",
		Long: `Replay every selected dataset case against its agent, judge each answer on
the case's metrics, and score it against the case's threshold profile.

The report is written as JSON (gzip-compressed when the path ends in .gz).
The command exits with status 1 when any case failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluation(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.datasetRoot, "dataset-root", "", "Dataset root directory (default: paths.datasets from .prepeval.yaml)")
	cmd.Flags().StringArrayVar(&opts.datasetFiles, "dataset-file", nil, "Dataset file, relative to the dataset root or the working directory (can be repeated)")
	cmd.Flags().StringArrayVar(&opts.agents, "agent", nil, "Only evaluate cases for this agent (can be repeated)")
	cmd.Flags().StringArrayVar(&opts.caseFilters, "case", nil, "Filter cases by case or scenario ID glob pattern (can be repeated)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Report path (default: <reports>/eval-report-<timestamp>.json)")
	cmd.Flags().StringVar(&opts.logPath, "log-file", "", "Write an NDJSON run log to this path")
	cmd.Flags().StringVar(&opts.junitPath, "junit", "", "Also write a JUnit XML report to this path")
	cmd.Flags().StringVar(&opts.profileFile, "profile-file", "", "YAML file with threshold profile overrides")
	cmd.Flags().IntVar(&opts.maxCasesPerAgent, "max-cases-per-agent", 0, "Maximum cases per agent and dataset file (default: 10)")
	cmd.Flags().IntVar(&opts.maxConcurrency, "max-concurrency", 0, "Maximum metrics judged at once for a case (default: CPUs-1)")
	cmd.Flags().IntVar(&opts.skipLines, "skip-lines", -1, "Header lines skipped at the top of each dataset file (default: 10)")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "Upload the report to the Azure Storage container in .prepeval.yaml")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print per-case scores as cases complete")
	addBackendFlags(cmd, &opts.backend)

	return cmd
}

func addBackendFlags(cmd *cobra.Command, opts *backendOptions) {
	cmd.Flags().StringVar(&opts.engine, "engine", engineOpenAI, "Agent engine: openai, mock")
	cmd.Flags().StringVar(&opts.model, "model", "", "Agent model or deployment (default: defaults.model or $AZURE_OPENAI_DEPLOYMENT)")
	cmd.Flags().StringVar(&opts.judgeModel, "judge-model", "", "Judge model or deployment (default: the agent model)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Bypass the judge cache for this run")
}

func runEvaluation(cmd *cobra.Command, opts *runOptions) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	pc, err := projectconfig.Load(wd)
	if err != nil {
		return err
	}

	b, err := buildBackends(pc, opts.backend, os.Getenv)
	if err != nil {
		return err
	}

	cfg, err := buildRunConfig(pc, opts, b)
	if err != nil {
		return err
	}

	policy, err := buildPolicy(pc, cfg.ProfileFile())
	if err != nil {
		return err
	}

	chain := agents.NewChain(b.engine,
		agents.WithModel(b.model),
		agents.WithTimeout(time.Duration(pc.Defaults.Timeout)*time.Second),
	)
	runner := orchestration.NewEvalRunner(cfg, chain, judge.NewAdapter(b.judge),
		orchestration.WithPolicy(policy),
		orchestration.WithOutput(stdout, stderr),
	)

	if cfg.Verbose() {
		runner.OnProgress(verboseProgressListener(stdout))
	}

	logPath := cfg.LogPath()
	if logPath == "" && pc.Defaults.RunLog != nil && *pc.Defaults.RunLog {
		logPath = runlog.DefaultLogPath(pc.Paths.Logs)
	}
	if logPath != "" {
		logger, err := runlog.NewJSONLogger(logPath, runner.RunID())
		if err != nil {
			return err
		}
		defer func() { _ = logger.Close() }()
		runner.OnProgress(orchestration.LogListener(logger))
		fmt.Fprintf(stdout, "Run log: %s\n", logPath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := b.engine.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing agent engine: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := b.engine.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(stderr, "warning: engine shutdown: %v\n", err)
		}
	}()

	fmt.Fprintf(stdout, "Dataset root: %s\n", cfg.DatasetRoot())
	fmt.Fprintf(stdout, "Model: %s (judge: %s)\n", b.model, b.judgeModel)

	report, runErr := runner.Run(ctx)
	if report == nil {
		return runErr
	}

	path := cfg.OutputPath()
	if path == "" {
		path = defaultReportPath(pc, cfg.DatasetRoot(), report.GeneratedAtUTC)
	}
	if err := writeReportOutputs(ctx, cmd, pc, cfg, opts.upload, report, path); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted after %d case(s): %w", report.TotalCases, runErr)
	}
	return caseFailure(report)
}

// buildPolicy applies the project overrides and then the profile file.
func buildPolicy(pc *projectconfig.ProjectConfig, profileFile string) (*scoring.Policy, error) {
	policy := scoring.DefaultPolicy()
	policy.Apply(pc.Scoring)
	if profileFile != "" {
		o, err := scoring.LoadOverrides(profileFile)
		if err != nil {
			return nil, err
		}
		policy.Apply(o)
	}
	return policy, nil
}

func buildRunConfig(pc *projectconfig.ProjectConfig, opts *runOptions, b *backends) (*config.RunConfig, error) {
	root := opts.datasetRoot
	if root == "" {
		root = pc.Paths.Datasets
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving dataset root: %w", err)
	}

	maxCases := opts.maxCasesPerAgent
	if maxCases <= 0 {
		maxCases = pc.Defaults.MaxCasesPerAgent
	}
	runOpts := []config.RunOption{
		config.WithDatasetRoot(absRoot),
		config.WithDatasetFiles(resolveDatasetFiles(opts.datasetFiles, absRoot)...),
		config.WithAgents(opts.agents...),
		config.WithCaseFilters(opts.caseFilters...),
		config.WithOutputPath(opts.outputPath),
		config.WithLogPath(opts.logPath),
		config.WithJUnitPath(opts.junitPath),
		config.WithProfileFile(opts.profileFile),
		config.WithModel(b.model),
		config.WithJudgeModel(b.judgeModel),
		config.WithMaxCasesPerAgent(maxCases),
		config.WithVerbose(opts.verbose),
	}
	if n := opts.maxConcurrency; n > 0 {
		runOpts = append(runOpts, config.WithMaxConcurrency(n))
	} else if n := pc.Defaults.MaxConcurrency; n > 0 {
		runOpts = append(runOpts, config.WithMaxConcurrency(n))
	}
	if opts.skipLines >= 0 {
		runOpts = append(runOpts, config.WithSkipLines(opts.skipLines))
	}
	return config.NewRunConfig(runOpts...), nil
}

// resolveDatasetFiles prefers each path under the dataset root and falls back
// to the path as given. When neither exists the root-relative path is kept so
// the loader error names it.
func resolveDatasetFiles(files []string, root string) []string {
	resolved := utils.ResolvePaths(files, root)
	for i, p := range resolved {
		asGiven, err := filepath.Abs(files[i])
		if err != nil {
			continue
		}
		if found, ok := validation.TryExistingFile(p, asGiven); ok {
			resolved[i] = found
		}
	}
	return resolved
}

// defaultReportPath places the report under paths.reports when set, or under
// <dataset root>/reports.
func defaultReportPath(pc *projectconfig.ProjectConfig, datasetRoot string, now time.Time) string {
	p := reporting.DefaultReportPath(datasetRoot, now)
	if pc.Paths.Reports != "" {
		return filepath.Join(pc.Paths.Reports, filepath.Base(p))
	}
	return p
}

func writeReportOutputs(ctx context.Context, cmd *cobra.Command, pc *projectconfig.ProjectConfig, cfg *config.RunConfig, upload bool, report *models.EvalRunReport, path string) error {
	stdout := cmd.OutOrStdout()

	if err := reporting.WriteReport(path, report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	reporting.PrintSummary(stdout, report, path)

	if junitPath := cfg.JUnitPath(); junitPath != "" {
		if err := reporting.WriteJUnitXML(report, junitPath); err != nil {
			return fmt.Errorf("failed to write JUnit report: %w", err)
		}
		fmt.Fprintf(stdout, "JUnit report saved to: %s\n", junitPath)
	}

	if upload {
		if !pc.Upload.Enabled() {
			return errors.New("--upload needs upload.account_url and upload.container in .prepeval.yaml")
		}
		uploader, err := reporting.NewBlobUploader(pc.Upload.AccountURL, pc.Upload.Container,
			reporting.WithPrefix(pc.Upload.Prefix),
			reporting.WithGzip(pc.Upload.Gzip != nil && *pc.Upload.Gzip),
		)
		if err != nil {
			return err
		}
		// An interrupted run still uploads what it has.
		name, err := uploader.Upload(context.WithoutCancel(ctx), report)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Report uploaded to: %s/%s\n", pc.Upload.Container, name)
	}
	return nil
}

// caseFailure returns a *CaseFailureError when any case in report failed.
func caseFailure(report *models.EvalRunReport) error {
	if failed := report.TotalCases - report.TotalPassed; failed > 0 {
		return &CaseFailureError{Failed: failed, Total: report.TotalCases}
	}
	return nil
}

func verboseProgressListener(w io.Writer) orchestration.ProgressListener {
	return func(event orchestration.ProgressEvent) {
		switch event.EventType {
		case orchestration.EventCaseCompleted:
			icon := "✓"
			if !event.Passed {
				icon = "✗"
			}
			duration := time.Duration(event.DurationMs) * time.Millisecond
			fmt.Fprintf(w, "  %s composite=%.2f (%v)\n", icon, event.Composite, duration)
			if reason, ok := event.Details["failure_reason"].(string); ok && reason != "" {
				fmt.Fprintf(w, "    • %s\n", reason)
			}
		case orchestration.EventCaseFailed:
			fmt.Fprintf(w, "  ✗ error (%v)\n", time.Duration(event.DurationMs)*time.Millisecond)
		case orchestration.EventRunCompleted:
			duration := time.Duration(event.DurationMs) * time.Millisecond
			fmt.Fprintf(w, "Run completed in %v\n\n", duration)
		}
	}
}
