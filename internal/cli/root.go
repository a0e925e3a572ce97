// Package cli implements the Steady command-line interface using Cobra.
// Each subcommand maps to one tracker capability (checkin, streak, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "steady",
	Short: "Steady — habit tracking that keeps score",
	Long: `Steady is a local-first habit and accountability tracker.
Check in on your goals, keep streaks alive, earn weekly points,
and run group challenges with your crew.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagUser string
	flagTZ   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Acting user id (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagTZ, "tz", "", "IANA timezone (overrides config)")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
