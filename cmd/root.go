// Package cmd wires the ownplanner binary's subcommands.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ownplanner",
	Short: "OwnPlanner - a personal planner with a conversational assistant",
	Long: `OwnPlanner manages tasks and notes and answers natural-language
requests through a Gemini-backed assistant that can operate on your data
via tools.

Run "ownplanner serve" to start the HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
