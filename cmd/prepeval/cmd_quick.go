package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/agentsleague/prepeval/internal/agents"
	"github.com/agentsleague/prepeval/internal/judge"
	"github.com/agentsleague/prepeval/internal/models"
	"github.com/agentsleague/prepeval/internal/projectconfig"
	"github.com/spf13/cobra"
)

type quickOptions struct {
	topics  string
	email   string
	hours   int
	weeks   int
	asJSON  bool
	backend backendOptions
}

func newQuickCommand() *cobra.Command {
	opts := &quickOptions{}

	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Run the preparation workflow once and judge the whole result",
		Long: `Run the curator, planner and engagement agents once for a single study
request and score the combined output with the whole-workflow judge.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuick(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.topics, "topics", "", "Certification or topics to prepare for (required)")
	cmd.Flags().StringVar(&opts.email, "email", "student@eval.local", "Student email passed to the engagement agent")
	cmd.Flags().IntVar(&opts.hours, "hours", agents.DefaultWeeklyHours, "Study hours per week")
	cmd.Flags().IntVar(&opts.weeks, "weeks", agents.DefaultDurationWeeks, "Preparation duration in weeks")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the judge verdict as JSON")
	addBackendFlags(cmd, &opts.backend)
	_ = cmd.MarkFlagRequired("topics")

	return cmd
}

func runQuick(cmd *cobra.Command, opts *quickOptions) error {
	out := cmd.OutOrStdout()

	if strings.TrimSpace(opts.topics) == "" {
		return errors.New("--topics must not be empty")
	}
	if opts.hours <= 0 || opts.weeks <= 0 {
		return errors.New("--hours and --weeks must be positive")
	}

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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := b.engine.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing agent engine: %w", err)
	}
	defer func() { _ = b.engine.Shutdown(ctx) }()

	chain := agents.NewChain(b.engine, agents.WithModel(b.model))
	prep, err := chain.Prepare(ctx, models.PreparationRequest{
		Topics:        opts.topics,
		StudentEmail:  opts.email,
		WeeklyHours:   opts.hours,
		DurationWeeks: opts.weeks,
	})
	if err != nil {
		return fmt.Errorf("preparation workflow failed: %w", err)
	}

	explain := map[string]map[string]any{judge.CustomPrepEval: prep.WorkflowInputs()}
	in, err := judge.BuildInput(explain, judge.CustomPrepEval)
	if err != nil {
		return err
	}
	v, err := b.judge.Judge(ctx, in)
	if err != nil {
		return fmt.Errorf("judging preparation: %w", err)
	}

	if opts.asJSON {
		fields := v.Fields
		if fields == nil {
			fields = map[string]any{"score": v.Score, "reasoning": v.Reasoning}
		}
		data, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprint(out, prep.Markdown())
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Score:      %.2f\n", v.Score)
	fmt.Fprintf(out, "Prob score: %.2f\n", v.ProbScore)
	for _, key := range subScoreKeys(v.Fields) {
		fmt.Fprintf(out, "  %-20s %v\n", key, v.Fields[key])
	}
	if v.Reasoning != "" {
		fmt.Fprintf(out, "\nReasoning:\n%s\n", v.Reasoning)
	}
	return nil
}

// subScoreKeys returns the per-artifact score fields in name order.
func subScoreKeys(fields map[string]any) []string {
	var keys []string
	for k := range fields {
		if k != "score" && strings.HasSuffix(strings.ToLower(k), "score") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
