package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentsleague/prepeval/internal/cache"
	"github.com/agentsleague/prepeval/internal/projectconfig"
	"github.com/spf13/cobra"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the judge verdict cache",
		Long: `Manage the judge verdict cache.

When judge.cache.enabled is set in .prepeval.yaml, verdicts are stored keyed by
judge model, metric, and rendered inputs, so unchanged answers are not judged
twice.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the judge verdict cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				pc, err := projectconfig.Load(wd)
				if err != nil {
					return err
				}
				dir = pc.Judge.Cache.Dir
			}

			// Resolve to absolute path
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving cache directory: %w", err)
			}

			if err := cache.New(absDir).Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "cache-dir", "", "Cache directory to clear (default: judge.cache.dir)")

	return cmd
}
