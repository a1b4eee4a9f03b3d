package main

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/agentsleague/prepeval/internal/judge"
	"github.com/agentsleague/prepeval/internal/projectconfig"
	"github.com/agentsleague/prepeval/internal/scoring"
	"github.com/spf13/cobra"
)

func newPolicyCommand() *cobra.Command {
	var profileFile string

	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show the effective scoring policy",
		Long: `Print the threshold profiles, per-metric thresholds and hard-fail metrics
that a run would score with, after .prepeval.yaml and --profile-file overrides
are applied, followed by the metrics the judge understands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			pc, err := projectconfig.Load(wd)
			if err != nil {
				return err
			}
			policy, err := buildPolicy(pc, profileFile)
			if err != nil {
				return err
			}
			printPolicy(cmd.OutOrStdout(), policy)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileFile, "profile-file", "", "YAML file with threshold profile overrides")

	return cmd
}

//nolint:errcheck // display-only writes
func printPolicy(w io.Writer, p *scoring.Policy) {
	const col = 30

	fmt.Fprintln(w, "Profiles:")
	for _, name := range p.ProfileNames() {
		profile := p.Resolve(name)
		fmt.Fprintf(w, "  %s (pass composite >= %.2f)\n", profile.Name, profile.PassComposite)
		for _, metric := range slices.Sorted(maps.Keys(profile.Weights)) {
			fmt.Fprintf(w, "    %-*s %.2f\n", col, metric, profile.Weights[metric])
		}
	}

	// Threshold keys are folded; show the registered spelling where known.
	thresholds := make(map[string]float64)
	for key, v := range p.Thresholds() {
		thresholds[judge.NormalizeMetric(key)] = v
	}
	fmt.Fprintln(w, "\nThresholds:")
	if len(thresholds) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, metric := range slices.Sorted(maps.Keys(thresholds)) {
		fmt.Fprintf(w, "  %-*s %.2f\n", col+2, metric, thresholds[metric])
	}

	fmt.Fprintf(w, "\nMetrics (* hard-fail below %.2f, + default set):\n", p.HardFailFloor())
	defaults := judge.DefaultMetrics()
	for _, metric := range judge.Names() {
		var marks strings.Builder
		if p.IsHardFail(metric) {
			marks.WriteString("*")
		}
		if slices.Contains(defaults, metric) {
			marks.WriteString("+")
		}
		fmt.Fprintf(w, "  %-*s %s\n", col+2, metric, marks.String())
	}
}
