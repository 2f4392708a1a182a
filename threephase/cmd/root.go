// Package cmd provides the command-line interface of threephase.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the base command, with all its subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "threephase",
		Short: "Threephase runs discrete-event models with the three-phase method.",
		Long: `Threephase runs discrete-event models with the three-phase ` +
			`method. Currently, it ships the critical care unit model.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCommand())

	return rootCmd
}

// Execute runs the root command and exits with a non-zero status on failure.
func Execute() {
	err := NewRootCommand().Execute()
	if err != nil {
		os.Exit(1)
	}
}
