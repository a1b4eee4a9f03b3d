package main

import (
	"fmt"

	"github.com/agentsleague/prepeval/internal/reporting"
	"github.com/spf13/cobra"
)

func newReportCommand() *cobra.Command {
	var junitPath string

	cmd := &cobra.Command{
		Use:   "report <report.json[.gz]>",
		Short: "Print the summary of a saved report",
		Long: `Read a report written by "prepeval run" (plain or gzip-compressed) and print
its console summary. With --junit the cases are also exported as JUnit XML.

The command exits with status 1 when the report contains failed cases.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			report, err := reporting.ReadReport(path)
			if err != nil {
				return err
			}

			reporting.PrintSummary(cmd.OutOrStdout(), report, path)

			if junitPath != "" {
				if err := reporting.WriteJUnitXML(report, junitPath); err != nil {
					return fmt.Errorf("failed to write JUnit report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "JUnit report saved to: %s\n", junitPath)
			}
			return caseFailure(report)
		},
	}

	cmd.Flags().StringVar(&junitPath, "junit", "", "Write a JUnit XML report to this path")

	return cmd
}
