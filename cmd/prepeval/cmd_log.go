package main

import (
	"fmt"
	"path/filepath"

	"github.com/agentsleague/prepeval/internal/runlog"
	"github.com/spf13/cobra"
)

func newLogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "View run logs",
		Long: `View NDJSON run logs.

Run logs are written during "prepeval run" when --log-file is given or
defaults.run_log is enabled. They record the run start, every case, and the
run completion.`,
	}

	cmd.AddCommand(newLogListCommand())
	cmd.AddCommand(newLogViewCommand())

	return cmd
}

func newLogListCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded run logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			files, err := runlog.ListLogs(absDir)
			if err != nil {
				return fmt.Errorf("listing run logs: %w", err)
			}

			if len(files) == 0 {
				fmt.Fprintln(out, "No run logs found.")
				return nil
			}

			fmt.Fprintf(out, "%-40s %-8s %s\n", "File", "Events", "Modified")
			fmt.Fprintln(out, "─────────────────────────────────────────────────────────────────")
			for _, f := range files {
				fmt.Fprintf(out, "%-40s %-8d %s\n", f.Name, f.NumEvents, f.ModTime.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "logs", "Directory to search for run logs")

	return cmd
}

func newLogViewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <run-log>",
		Short: "View a run timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := runlog.ReadEvents(args[0])
			if err != nil {
				return fmt.Errorf("reading run log: %w", err)
			}

			runlog.RenderTimeline(cmd.OutOrStdout(), events)
			return nil
		},
	}

	return cmd
}
