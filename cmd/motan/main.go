// Package main provides the entry point for the motan analysis CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/motan/cmd/motan/commands"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "motan",
		Short: "Motion analysis for recorded measurement logs",
		Long: `Motan decodes compressed motion measurement logs and graphs the
signals recorded in them: commanded toolhead motion, reconstructed stepper
positions, accelerometer and angle sensor data, and datasets derived from
them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(commands.NewGraphCommand())
	rootCmd.AddCommand(commands.NewListCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
