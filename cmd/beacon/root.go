package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "beacon",
		Short: "Beacon - brand visibility audits across AI answer engines",
		Long: `Beacon measures how visible a brand is in AI-generated answers.

It generates a weighted matrix of buyer-style prompts, runs them against
multiple AI backends concurrently, extracts brand mentions from the replies,
and produces a scored audit with anti-pattern findings and a gap analysis.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newMatrixCommand())
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newRunsCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
