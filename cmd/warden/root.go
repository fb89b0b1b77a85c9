package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Warden - closed-loop cloud spend governor",
	Long: `Warden keeps cloud spend inside monthly budgets by closing the loop
between billing data and service availability.

Each check cycle it:
  - Queries usage metrics and resolves unit prices for every service
  - Compares effective spend (raw spend minus baseline) against the budget
  - Sends a WARNING alert at the warning threshold
  - Disables the service's API and sends a CRITICAL alert at the
    critical threshold
  - Rolls state over at billing-month boundaries and re-enables services
    it disabled in the previous month`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
