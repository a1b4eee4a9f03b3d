package main

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepeval",
		Short: "prepeval - evaluation harness for the study-preparation agents",
		Long: `prepeval replays recorded dataset cases against the study-preparation
agents, scores every answer with an LLM judge, and writes a report.

Endpoint settings are read from the environment (a .env file in the working
directory is loaded first) and from .prepeval.yaml.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	envFile := cmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before configuration is resolved")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		return loadEnvFile(*envFile)
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newQuickCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newLogCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newPolicyCommand())

	return cmd
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	slog.Debug("loaded environment file", "path", path)
	return nil
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
